package cmd

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/charts/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "check",
		Short: "Validate config files",
		Long: `Validate one or more charts.yaml files.

Each file is decoded onto the defaults and validated. With --print the
effective configuration is written back out as YAML.`,
		Usage: "chartsim check [--print] <charts.yaml>...",
		Run:   runCheck,
	})
}

func runCheck(env *Env, args []string) error {
	var paths []string
	show := false
	for _, arg := range args {
		switch arg {
		case "--print":
			show = true
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return fmt.Errorf("unknown flag: %s", arg)
			}
			paths = append(paths, arg)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("at least one config file is required")
	}

	failed := 0
	for _, path := range paths {
		f, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(env.Stdout, "FAIL %s\n  %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(env.Stdout, "ok   %s (schema %s)\n", path, f.Version)
		if show {
			out, err := yaml.Marshal(f)
			if err != nil {
				return err
			}
			env.Stdout.Write(out)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d config files invalid", failed, len(paths))
	}
	return nil
}
