package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/renderwire/renderwire/internal/cli"
	"github.com/renderwire/renderwire/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("renderwire", flag.ContinueOnError)
	var (
		srcFlag       = flags.String("src", ".", "Source directory to scan (supports './...' patterns)")
		outFlag       = flags.String("out", "", "Output directory for artifacts (defaults to the source directory)")
		envFlag       = flags.String("env", "development", "Build environment name")
		suffixFlag    = flags.String("suffix", "", "Custom suffix mixed into the configuration identity")
		moduleFlag    = flags.String("module", "", "Module path override (defaults to go.mod module)")
		writeFlag     = flags.Bool("write", false, "Write rewritten sources back in place")
		watchFlag     = flags.Bool("watch", false, "Watch for changes and re-run on each change")
		debugAddrFlag = flags.String("debug-addr", cli.DefaultDebugAddr, "Listen address for the watch-mode debug server")
		debugFlag     = flags.Bool("debug-files", false, "Write pre/post snapshots and a transformation log")
		noResolve     = flags.Bool("no-resolve", false, "Disable interface resolution (all dependencies unresolved)")
		verboseFlag   = flags.Bool("verbose", false, "Enable verbose output and structured logging")
		quietFlag     = flags.Bool("quiet", false, "Only show errors and final results")
		cleanFlag     = flags.Bool("clean", false, "Remove generated artifacts and exit")
		retentionFlag = flags.Int("retention", 3, "Number of artifact sets to keep per output directory")
	)

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: renderwire [options]\n\n")
		fmt.Fprintf(os.Stderr, "Renderwire Dependency Rewriter\n")
		fmt.Fprintf(os.Stderr, "Scans Go sources for component functions and //di:: service registrations,\n")
		fmt.Fprintf(os.Stderr, "then rewrites component bodies to resolve dependencies from the registry.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  renderwire -src ./...                # Dry run over the whole tree\n")
		fmt.Fprintf(os.Stderr, "  renderwire -src ./internal -write    # Rewrite sources in place\n")
		fmt.Fprintf(os.Stderr, "  renderwire -watch -debug-files       # Watch mode with debug artifacts\n")
		fmt.Fprintf(os.Stderr, "  renderwire -clean -out ./build       # Remove generated artifacts\n")
	}

	if err := flags.Parse(args); err != nil {
		return 2
	}

	var diagnostics *utils.DiagnosticSystem
	switch {
	case *quietFlag:
		diagnostics = utils.NewQuietDiagnostics()
	case *verboseFlag:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}

	diagnostics.Section("Renderwire Dependency Rewriter")

	config := cli.Config{
		SourceDir:                 *srcFlag,
		OutputDir:                 *outFlag,
		PackageName:               *moduleFlag,
		Environment:               *envFlag,
		ConfigSuffix:              *suffixFlag,
		DebugAddr:                 *debugAddrFlag,
		EnableFunctionalDI:        true,
		EnableInterfaceResolution: !*noResolve,
		GenerateDebugFiles:        *debugFlag,
		Watch:                     *watchFlag,
		Verbose:                   *verboseFlag,
		ConfigRetention:           *retentionFlag,
	}

	if *cleanFlag {
		cleaner := cli.NewCleaner(diagnostics)
		outputDir := *outFlag
		if outputDir == "" {
			outputDir = *srcFlag
		}
		if err := cleaner.Clean(outputDir); err != nil {
			diagnostics.Error("Clean failed: %v", err)
			return 1
		}
		return 0
	}

	if *watchFlag {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		watcher := cli.NewWatcher(config, diagnostics, 0)
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			diagnostics.Error("Watch failed: %v", err)
			return 1
		}
		return 0
	}

	pipeline := cli.NewPipeline(config, diagnostics)
	results, err := pipeline.TransformForBuild()
	if err != nil {
		diagnostics.Error("Transformation failed: %v", err)
		return 1
	}

	if *writeFlag {
		for path, source := range results {
			if err := os.WriteFile(path, []byte(source), 0644); err != nil {
				diagnostics.Error("Failed to write %s: %v", path, err)
				return 1
			}
		}
	}

	summary := pipeline.GetTransformationSummary()
	stats := map[string]interface{}{
		"Files transformed":       summary.Count,
		"Files skipped":           len(summary.SkippedFiles),
		"Dependencies resolved":   summary.ResolvedDependencies,
		"Dependencies unresolved": summary.UnresolvedDependencies,
		"Configuration":           summary.ConfigHash,
		"Reused from cache":       summary.ReusedFromCache,
	}
	diagnostics.Summary("Transformation Complete", stats)

	if *verboseFlag && len(summary.TransformedFiles) > 0 {
		diagnostics.Subsection("Transformed Files")
		for _, file := range summary.TransformedFiles {
			diagnostics.List("%s", file)
		}
	}

	validation := pipeline.ValidationReport()
	if !validation.IsValid {
		diagnostics.Warn("Validation reported %d missing, %d ambiguous, %d circular",
			len(validation.MissingImplementations),
			len(validation.AmbiguousImplementations),
			len(validation.CircularDependencies))
	}

	if *writeFlag {
		diagnostics.Success("Rewrote %d files in place", summary.Count)
	} else {
		diagnostics.Success("Dry run complete, pass -write to rewrite sources")
	}

	return 0
}
