package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/prometheus/common/expfmt"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/charts/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Replay scenarios and print tooltip state",
		Long: `Replay one or more scenario files against a fresh interaction store.

After every event the store is advanced one frame and a record is printed with
the current domains, the point under the pointer, the aggregated tooltip and
where the popover would be placed.

Without --config, charts.yaml next to each scenario is used when present.
Scenarios run concurrently; output is printed in argument order.`,
		Usage: "chartsim run [--config path] [--format json|text] [--metrics] <scenario.yaml>...",
		Run:   runRun,
	})
}

type runOptions struct {
	configPath string
	format     string
	metrics    bool
	paths      []string
}

func parseRunArgs(args []string) (runOptions, error) {
	opts := runOptions{format: "json"}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		var err error
		switch {
		case arg == "--config" || strings.HasPrefix(arg, "--config="):
			opts.configPath, i, err = takeValue(args, i, "--config")
		case arg == "--format" || strings.HasPrefix(arg, "--format="):
			opts.format, i, err = takeValue(args, i, "--format")
		case arg == "--metrics":
			opts.metrics = true
		case strings.HasPrefix(arg, "-"):
			err = fmt.Errorf("unknown flag: %s", arg)
		default:
			opts.paths = append(opts.paths, arg)
		}
		if err != nil {
			return opts, err
		}
	}
	if opts.format != "json" && opts.format != "text" {
		return opts, fmt.Errorf("unknown format %q (expected json or text)", opts.format)
	}
	if len(opts.paths) == 0 {
		return opts, fmt.Errorf("at least one scenario file is required")
	}
	return opts, nil
}

func runRun(env *Env, args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	logger := env.Logger()

	outputs := make([]bytes.Buffer, len(opts.paths))
	g, ctx := errgroup.WithContext(context.Background())
	for i, path := range opts.paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			settings, err := settingsFor(opts.configPath, path)
			if err != nil {
				return err
			}
			sc, err := LoadScenario(path)
			if err != nil {
				return err
			}
			if sc.Name == "" {
				sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			logger.Debug("running scenario", "path", path, "events", len(sc.Events))
			return replay(&outputs[i], sc, settings, opts, logger)
		})
	}
	err = g.Wait()
	for i := range outputs {
		if _, werr := outputs[i].WriteTo(env.Stdout); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// settingsFor returns the explicit config when one was given, otherwise the
// optional config next to the scenario.
func settingsFor(configPath, scenarioPath string) (*config.File, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadOptional(filepath.Dir(scenarioPath))
}

func replay(w io.Writer, sc *Scenario, settings *config.File, opts runOptions, logger *slog.Logger) error {
	sim, err := newSimulator(sc, settings, logger)
	if err != nil {
		return err
	}
	defer sim.close()

	emit := jsonEmitter(w)
	if opts.format == "text" {
		emit = textEmitter(w)
	}
	if err := sim.run(emit); err != nil {
		return fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	if opts.metrics {
		return writeMetrics(w, sim)
	}
	return nil
}

func jsonEmitter(w io.Writer) func(Record) error {
	enc := json.NewEncoder(w)
	return func(r Record) error { return enc.Encode(r) }
}

func textEmitter(w io.Writer) func(Record) error {
	return func(r Record) error {
		fmt.Fprintf(w, "%s #%d %-10s", r.Scenario, r.Step, r.Event)
		if r.Domains != nil {
			fmt.Fprintf(w, " x=[%g %g] y=[%g %g]", r.Domains.X[0], r.Domains.X[1], r.Domains.Y[0], r.Domains.Y[1])
		}
		if r.Hit != nil {
			fmt.Fprintf(w, " hit=%s[%d]", r.Hit.Series, r.Hit.Index)
		}
		if r.Best != nil {
			fmt.Fprintf(w, " best=%s[%d]", r.Best.Series, r.Best.Index)
		}
		if r.Popover != nil {
			fmt.Fprintf(w, " popover=(%g,%g)", r.Popover.X, r.Popover.Y)
		}
		_, err := fmt.Fprintln(w)
		return err
	}
}

func writeMetrics(w io.Writer, sim *simulator) error {
	families, err := sim.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
