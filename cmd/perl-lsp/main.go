// Command perl-lsp is a Language Server Protocol implementation for
// Perl: a context-sensitive lexer, an LSP JSON-RPC runtime, and a
// lifecycle-aware workspace symbol index. By default it communicates
// over stdin/stdout; --socket switches to a single TCP connection.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/config"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/dap"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/document"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/index"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/lsp"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/toolrunner"
)

const version = "0.1.0"

func main() {
	var (
		stdio       = flag.Bool("stdio", true, "Communicate over stdin/stdout (default)")
		socket      = flag.String("socket", "", "Listen on this TCP address instead of stdio")
		logLevel    = flag.String("log-level", "", "Override configured log level (debug, info, warn, error)")
		trace       = flag.String("trace", "", "Override configured trace level (off, messages, verbose)")
		configPath  = flag.String("config", "", "Path to a TOML configuration file")
		debugEnable = flag.Bool("enable-debugger", false, "Allow perl.launchDebugger to report a session handle")
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Perl Language Server Protocol implementation.\n")
		fmt.Fprintf(os.Stderr, "Communicates via stdin/stdout using JSON-RPC unless --socket is given.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                      # Start the server over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --socket :7658       # Start the server on a TCP socket\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --config perl-lsp.toml\n", os.Args[0])
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		fmt.Printf("perl-lsp %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.LoadFile(config.Default(), *configPath)
	if err != nil {
		log.Fatalf("perl-lsp: %v", err)
	}
	cfg = config.ApplyEnv(cfg)
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *trace != "" {
		cfg.TraceLevel = *trace
	}

	root, err := os.Getwd()
	if err != nil {
		log.Fatalf("perl-lsp: %v", err)
	}

	docs := document.NewStore()
	budgets := index.Budgets{
		MaxFiles:            cfg.Budgets.MaxFiles,
		InitialScanBudget:   cfg.InitialScanBudget(),
		IncrementalBudget:   cfg.IncrementalBudget(),
		SettleWindow:        cfg.SettleWindow(),
		ParseStormWindow:    index.DefaultBudgets().ParseStormWindow,
		ParseStormThreshold: index.DefaultBudgets().ParseStormThreshold,
		ScanConcurrency:     index.DefaultBudgets().ScanConcurrency,
	}
	coord := index.NewCoordinator(root, budgets)

	watcher, err := index.NewWatcher(root, coord)
	if err != nil {
		log.Printf("perl-lsp: file watcher disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	tools := &toolrunner.ExecRunner{
		Paths: map[string]string{
			"perltidy":   cfg.Tools.PerlTidy,
			"perlcritic": cfg.Tools.PerlCritic,
			"prove":      cfg.Tools.Prove,
		},
		Timeout: cfg.ToolTimeout(),
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))

	buildServer := func(r io.Reader, w io.Writer) *lsp.Server {
		srv := lsp.NewServer(r, w, cfg, docs, coord, tools)
		srv.SetLogger(logger)
		srv.SetDebugLauncher(dap.Launcher{Enabled: *debugEnable})
		return srv
	}

	if *socket != "" {
		if err := lsp.RunSocket(*socket, buildServer); err != nil {
			log.Fatalf("perl-lsp: %v", err)
		}
		return
	}

	_ = stdio
	server := buildServer(os.Stdin, os.Stdout)
	if err := lsp.RunStdio(server); err != nil {
		log.Printf("perl-lsp: %v", err)
		os.Exit(1)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
