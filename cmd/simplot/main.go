package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/common/version"
	"gopkg.in/alecthomas/kingpin.v2"
)

var cfg struct {
	verbose bool
}

var logger = log.NewLogfmtLogger(os.Stderr)

// commander is the subset of kingpin used to declare a command's
// arguments and flags.
type commander interface {
	Flag(name, help string) *kingpin.FlagClause
	Arg(name, help string) *kingpin.ArgClause
}

func main() {
	ctx := withOutput(context.Background(), os.Stdout)

	app := kingpin.New(filepath.Base(os.Args[0]), "Render charts from tiersim benchmark telemetry CSV files.").UsageWriter(os.Stdout)
	app.Version(version.Print("simplot"))
	app.HelpFlag.Short('h')
	app.Flag("verbose", "Enable verbose logging.").Short('v').Default("0").BoolVar(&cfg.verbose)

	zipfBatchCmd := app.Command("zipf-batch", "Render the read and write latency percentile charts from zipf batch telemetry.")
	zipfBatchParams := addZipfBatchParams(zipfBatchCmd)

	policyMovementCmd := app.Command("policy-movement", "Render the block movement chart, one series per tier pair.")
	policyMovementParams := addPolicyMovementParams(policyMovementCmd)

	devicesCmd := app.Command("devices", "Summarize per-device counters and render the device latency chart.")
	devicesParams := addDevicesParams(devicesCmd)

	deviceProfileCmd := app.Command("device-profile", "Render the device profiling latency chart.")
	deviceProfileParams := addDeviceProfileParams(deviceProfileCmd)

	// Missing or unknown arguments print the usage on stdout and exit
	// nonzero before anything is rendered. The bare invocation needs
	// its own check: kingpin's missing-command path terminates the
	// process with status 0.
	if len(os.Args) < 2 {
		app.Usage(nil)
		os.Exit(1)
	}

	parsedCmd, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app.Name, err)
		app.Usage(nil)
		os.Exit(1)
	}

	if !cfg.verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	switch parsedCmd {
	case zipfBatchCmd.FullCommand():
		os.Exit(checkError(zipfBatch(ctx, zipfBatchParams)))
	case policyMovementCmd.FullCommand():
		os.Exit(checkError(policyMovement(ctx, policyMovementParams)))
	case devicesCmd.FullCommand():
		os.Exit(checkError(devices(ctx, devicesParams)))
	case deviceProfileCmd.FullCommand():
		os.Exit(checkError(deviceProfile(ctx, deviceProfileParams)))
	default:
		level.Error(logger).Log("msg", "unknown command", "cmd", parsedCmd)
	}
}

func checkError(err error) int {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// dirOrDot resolves the output directory flag, defaulting to the
// working directory.
func dirOrDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

type contextKey uint8

const (
	contextKeyOutput contextKey = iota
)

func withOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, contextKeyOutput, w)
}

func output(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(contextKeyOutput).(io.Writer); ok {
		return w
	}
	return os.Stdout
}
