package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// inputFlags maps override flag names to the input field they set
var inputFlags = []struct {
	name  string
	usage string
	set   func(in *ProjectionInput, v float64)
}{
	{"rent", "Current warm rent per month in EUR", func(in *ProjectionInput, v float64) { in.WarmRent = v }},
	{"price", "Purchase price of the target property in EUR", func(in *ProjectionInput, v float64) { in.PurchasePrice = v }},
	{"return", "Expected fund return in % p.a. (e.g. 6)", func(in *ProjectionInput, v float64) { in.ExpectedReturnRate = v }},
	{"interest", "Mortgage interest in % p.a. (e.g. 3.5)", func(in *ProjectionInput, v float64) { in.InterestRate = v }},
	{"amortization", "Amortization in % p.a. (e.g. 2)", func(in *ProjectionInput, v float64) { in.AmortizationRate = v }},
	{"ancillary", "Ancillary purchase costs in % of the price (e.g. 10)", func(in *ProjectionInput, v float64) { in.AncillaryCostPercentage = v }},
}

// applyInputOverrides sets every input whose flag appears in values
func applyInputOverrides(input *ProjectionInput, values map[string]float64) {
	for _, f := range inputFlags {
		if v, ok := values[f.name]; ok {
			f.set(input, v)
		}
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one invocation and returns the process exit code.
// Deferred cleanup, including the final Log.Sync, runs before main exits.
func run(args []string) int {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Finanzieren auf Probe - rent vs. invest projection

Compares paying rent with a hypothetical mortgage on a target property. The
difference between the monthly financing payment and the current warm rent is
invested in a fund for 15 years after contract and fund costs. The result is
the fund balance per year and its share of the (inflated) purchase price.

Usage:
  %s [options]

Options:
`, os.Args[0])
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), `
Examples:
  %s                                 Projection with config.yaml (or built-in defaults)
  %s -rent 1200 -price 450000        Override single inputs
  %s -interactive                    Prompt for every input
  %s -pdf                            Write Finanzieren_auf_Probe_<date>.pdf to the export dir
  %s -csv table.csv                  Write the yearly table as CSV
  %s -sensitivity                    Final balance across expected returns
  %s -web -addr :8080                Start the JSON API

Environment (.env is loaded if present):
  TRIAL_ADDR, TRIAL_ENV, TRIAL_LOG_LEVEL, TRIAL_EXPORT_DIR
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
	}

	// Command line flags
	configFile := fs.String("config", "config.yaml", "Path to YAML configuration file")
	envFile := fs.String("env", ".env", "Path to .env file with TRIAL_* overrides")
	generatePDF := fs.Bool("pdf", false, "Render the two-page PDF report into the export directory")
	exportDir := fs.String("out", "", "Export directory (overrides report.export_dir)")
	csvFile := fs.String("csv", "", "Write the yearly table as CSV to this file")
	runSensitivity := fs.Bool("sensitivity", false, "Show the final balance across a range of expected returns")
	interactive := fs.Bool("interactive", false, "Prompt for every input, defaults from config")
	saveConfig := fs.Bool("save", false, "Save the (prompted) inputs back to the config file")
	webMode := fs.Bool("web", false, "Start web server mode")
	webAddr := fs.String("addr", "", "Web server address (overrides server.addr, use :0 for auto port)")
	overrides := make(map[string]*float64, len(inputFlags))
	for _, f := range inputFlags {
		overrides[f.name] = fs.Float64(f.name, 0, f.usage)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	config, err := LoadConfig(*configFile)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	ApplyEnvOverrides(config, *envFile)

	if err := InitLogger(config.Server.Environment, config.Server.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error initialising logger: %v\n", err)
		return 1
	}
	defer Log.Sync()

	values := make(map[string]float64)
	fs.Visit(func(f *flag.Flag) {
		if p, ok := overrides[f.Name]; ok {
			values[f.Name] = *p
		}
	})
	applyInputOverrides(&config.Inputs, values)
	if *exportDir != "" {
		config.Report.ExportDir = *exportDir
	}
	if *webAddr != "" {
		config.Server.Addr = *webAddr
	}

	if *webMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := NewWebServer(config, config.Server.Addr).Start(ctx); err != nil {
			Log.Error("web server stopped", zap.Error(err))
			return 1
		}
		return 0
	}

	if *interactive {
		config.Inputs = NewInteractiveInputBuilder(os.Stdin, os.Stdout).BuildInput(config.Inputs)
		if *saveConfig {
			if err := SaveConfig(config, *configFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			} else {
				fmt.Printf("Saved inputs to %s\n", *configFile)
			}
		}
	}

	if err := runConsoleMode(config, *generatePDF, *csvFile, *runSensitivity); err != nil {
		Log.Error("console run failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runConsoleMode prints the projection and writes the requested exports
func runConsoleMode(config *Config, generatePDF bool, csvFile string, runSensitivity bool) error {
	PrintHeader(os.Stdout, config.Inputs, config.Engine)

	if runSensitivity {
		if err := config.Sensitivity.Validate(); err != nil {
			return errors.Wrap(err, "sensitivity range")
		}
		PrintSensitivity(os.Stdout, RunSensitivityAnalysis(config.Inputs, config.Engine, config.Sensitivity))
		return nil
	}

	result := RunProjection(config.Inputs, config.Engine)
	PrintResultSummary(os.Stdout, result)

	if csvFile != "" {
		f, err := os.Create(csvFile)
		if err != nil {
			return err
		}
		if err := WriteCSV(f, result.Points); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("\nCSV saved to %s\n", csvFile)
	}

	if generatePDF {
		doc, _, err := GenerateReport(config, config.Inputs, time.Now())
		if err != nil {
			return err
		}
		path, err := SaveDocument(config.Report.ExportDir, doc)
		if err != nil {
			return err
		}
		fmt.Printf("\nPDF saved to %s\n", path)
	}
	return nil
}
