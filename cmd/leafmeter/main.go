package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ironsheep/leafmeter/internal/analysis"
	"github.com/ironsheep/leafmeter/internal/config"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `leafmeter - leaf area and shape measurement from scanned sheets

Usage:
  leafmeter analyze [options] image...   Measure the leaves on each image
  leafmeter serve [options]              Run the HTTP API
  leafmeter mcp [options]                Run the MCP server on stdin/stdout
  leafmeter version                      Print version information

Run "leafmeter <command> -h" for the options of a command.

Environment variables:
  LEAFMETER_LOG_LEVEL=debug         Enable debug logging
  LEAFMETER_REFERENCE_AREA          Default reference square area
  LEAFMETER_MIN_AREA, LEAFMETER_MAX_AREA, LEAFMETER_MAX_COSINE
                                    Shape classifier thresholds
  LEAFMETER_CONTOUR_BACKEND         Contour tracer (suzuki, opencv)
  LEAFMETER_ROUND, LEAFMETER_OVERLAY
                                    Output rounding and overlay rendering
  LEAFMETER_ADDR, LEAFMETER_ALLOWED_ORIGIN
                                    HTTP API settings
`

func main() {
	// Configure logging to stderr (stdout carries results and MCP frames)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	debug := os.Getenv("LEAFMETER_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("leafmeter %s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "analyze":
		err = runAnalyze(args, debug)
	case "serve":
		err = runServe(args, debug)
	case "mcp":
		err = runMCP(args, debug)
	case "--version", "-v", "version":
		fmt.Printf("leafmeter %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	case "--help", "-h", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, flag.ErrHelp) {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

// loadConfig resolves the configuration from defaults, an optional file and
// the environment.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// diagnostics returns the pipeline logger. Warnings are always printed;
// progress messages only in debug mode.
func diagnostics(debug bool) analysis.Logf {
	return func(format string, v ...any) {
		if debug || strings.HasPrefix(format, "warning") || strings.HasPrefix(format, "analysis panic") {
			log.Printf(format, v...)
		}
	}
}

func newAnalyzer(cfgPath string, debug bool) (*analysis.Analyzer, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return analysis.New(cfg, analysis.WithLogf(diagnostics(debug)))
}
