package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/go-drift/charts/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "watch",
		Short: "Re-run a scenario when its config changes",
		Long: `Run a scenario, then run it again every time the config file is saved.

The config file defaults to charts.yaml next to the scenario. Invalid edits
are reported and the previous run is kept. Stop with Ctrl-C.`,
		Usage: "chartsim watch [--config path] [--format json|text] <scenario.yaml>",
		Run:   runWatch,
	})
}

func runWatch(env *Env, args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	if len(opts.paths) != 1 {
		return fmt.Errorf("watch takes exactly one scenario file")
	}
	path := opts.paths[0]
	if opts.configPath == "" {
		opts.configPath = filepath.Join(filepath.Dir(path), config.FileName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return watchScenario(ctx, env, path, opts)
}

func watchScenario(ctx context.Context, env *Env, path string, opts runOptions) error {
	logger := env.Logger()
	sc, err := LoadScenario(path)
	if err != nil {
		return err
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	settings, err := config.Load(opts.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		settings, err = config.Default(), nil
	}
	if err != nil {
		return err
	}
	if err := replay(env.Stdout, sc, settings, opts, logger); err != nil {
		return err
	}

	logger.Info("watching config", "path", opts.configPath)
	return config.Watch(ctx, opts.configPath, func(f *config.File, err error) {
		if err != nil {
			logger.Warn("config rejected", "error", err)
			return
		}
		logger.Info("config changed, replaying", "scenario", sc.Name)
		if err := replay(env.Stdout, sc, f, opts, logger); err != nil {
			logger.Error("replay failed", "error", err)
		}
	})
}
