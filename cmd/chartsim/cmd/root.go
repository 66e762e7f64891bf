// Package cmd implements the chartsim commands.
//
// The root command dispatches to subcommands (run, check, watch), each of
// which parses its own arguments.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(env *Env, args []string) error
	SubCommands []*Command
}

// Env carries the process streams so commands can be run from tests.
type Env struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
}

// Logger returns a text logger on Stderr, at debug level when Verbose.
func (e *Env) Logger() *slog.Logger {
	level := slog.LevelInfo
	if e.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(e.Stderr, &slog.HandlerOptions{Level: level}))
}

var rootCmd = &Command{
	Name:  "chartsim",
	Short: "Replay chart interaction scenarios",
	Long: `chartsim drives the chart interaction store from a scenario file:
series registration, pointer and crosshair moves, pan, pinch and wheel
gestures. After every event it prints the tooltip the overlay would show.

Use "chartsim <command> --help" for more information about a command.`,
	Usage: "chartsim [-v] <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the given arguments on the process streams.
func Execute(args []string) error {
	env := &Env{Stdout: os.Stdout, Stderr: os.Stderr}
	err := execute(env, args)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
	}
	return err
}

func execute(env *Env, args []string) error {
	var filtered []string
	for _, arg := range args {
		switch arg {
		case "-h", "--help", "help":
			if len(filtered) == 0 {
				printHelp(env.Stdout, rootCmd)
				return nil
			}
			filtered = append(filtered, arg)
		case "--version", "version":
			if len(filtered) == 0 {
				fmt.Fprintf(env.Stdout, "chartsim version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filtered = append(filtered, arg)
		case "-v", "--verbose":
			env.Verbose = true
		default:
			filtered = append(filtered, arg)
		}
	}
	if len(filtered) == 0 {
		printHelp(env.Stdout, rootCmd)
		return nil
	}

	name := filtered[0]
	cmd, ok := commands[name]
	if !ok {
		printHelp(env.Stderr, rootCmd)
		return fmt.Errorf("unknown command: %s", name)
	}
	cmdArgs := filtered[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(env.Stdout, cmd)
			return nil
		}
	}
	return cmd.Run(env, cmdArgs)
}

func printHelp(w io.Writer, cmd *Command) {
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(w, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -h, --help           Show help for a command")
	fmt.Fprintln(w, "  -v, --verbose        Log store activity to stderr")
	fmt.Fprintln(w, "  --version            Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  chartsim run scenario.yaml                 Print tooltip JSON lines")
	fmt.Fprintln(w, "  chartsim run --format text a.yaml b.yaml   Run two scenarios")
	fmt.Fprintln(w, "  chartsim check charts.yaml                 Validate a config file")
}

func printCommandHelp(w io.Writer, cmd *Command) {
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
}

// takeValue reads the value of a "--name value" or "--name=value" flag at
// args[i] and returns it with the index of the last consumed argument.
func takeValue(args []string, i int, name string) (string, int, error) {
	arg := args[i]
	if len(arg) > len(name)+1 && arg[:len(name)+1] == name+"=" {
		return arg[len(name)+1:], i, nil
	}
	if i+1 >= len(args) {
		return "", i, fmt.Errorf("%s requires a value", name)
	}
	return args[i+1], i + 1, nil
}
