package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heftdev/heft/internal/config"
	"github.com/heftdev/heft/internal/detect/cache"
	"github.com/heftdev/heft/internal/detect/docker"
	"github.com/heftdev/heft/internal/detect/project"
	"github.com/heftdev/heft/internal/orchestrator"
	"github.com/heftdev/heft/internal/platform"
	"github.com/heftdev/heft/internal/report"
	"github.com/heftdev/heft/internal/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for reclaimable disk space",
	Long:  `Run every detector over the configured roots and print what each one found.`,
	RunE:  runScan,
}

var (
	scanRoots       []string
	scanConfigPath  string
	scanTimeout     time.Duration
	scanNoDocker    bool
	scanDisable     []string
	scanVerbose     bool
	scanProgressive bool
	scanJSON        bool
	scanDBPath      string
	scanNoSave      bool
)

func init() {
	scanCmd.Flags().StringSliceVarP(&scanRoots, "roots", "r", nil, "Root directory to scan (repeatable, defaults to $HOME)")
	scanCmd.Flags().StringVar(&scanConfigPath, "config", defaultConfigPath(), "Path to config file")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Subprocess timeout per detector (0 = use config/default)")
	scanCmd.Flags().BoolVar(&scanNoDocker, "no-docker", false, "Disable the Docker detector")
	scanCmd.Flags().StringSliceVar(&scanDisable, "disable", nil, "Detector names to disable (repeatable)")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Enable verbose detector logging")
	scanCmd.Flags().BoolVar(&scanProgressive, "progressive", false, "Print each detector's result as soon as it finishes")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print results as JSON instead of a table")
	scanCmd.Flags().StringVar(&scanDBPath, "db", defaultDBPath(), "Path to the snapshot database")
	scanCmd.Flags().BoolVar(&scanNoSave, "no-save", false, "Do not persist this scan as a snapshot")
}

func runScan(cmd *cobra.Command, args []string) error {
	config.LoadDotEnv()

	plat, err := platform.Detect()
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to detect platform: %w", err))
	}

	fileCfg, err := config.LoadFile(scanConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	flags := config.Flags{Disable: scanDisable}
	if len(scanRoots) > 0 {
		flags.Roots = scanRoots
	}
	if scanTimeout > 0 {
		flags.Timeout = &scanTimeout
	}
	if cmd.Flags().Changed("verbose") {
		flags.Verbose = &scanVerbose
	}
	if scanNoDocker {
		flags.NoDocker = &scanNoDocker
	}

	cfg := config.Resolve(fileCfg, flags, plat)

	mode := orchestrator.Batch
	progressive := scanProgressive || (fileCfg.Progressive != nil && *fileCfg.Progressive)
	if progressive {
		mode = orchestrator.Progressive
	}

	orch := orchestrator.New(mode,
		project.New(),
		cache.New(),
		docker.New(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCanceling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()

	result := orch.Run(ctx, cfg)

	if scanJSON {
		doc := report.NewScanJSON(result.RunID, result.ScannedAt, result.Duration.Milliseconds(), result.Entries, result.DetectorTimings, result.Memory, result.Diagnostics)
		if err := report.WriteJSON(os.Stdout, doc); err != nil {
			return wrapRuntime(fmt.Errorf("failed to write JSON: %w", err))
		}
	} else {
		var diagnostics []string
		if cfg.Verbose {
			diagnostics = result.Diagnostics
		}
		report.RenderTable(os.Stdout, result.Entries, diagnostics)
	}

	if !scanNoSave {
		if err := saveSnapshot(ctx, scanDBPath, result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save snapshot: %v\n", err)
		}
	}

	return nil
}

func saveSnapshot(ctx context.Context, dbPath string, result orchestrator.Result) error {
	st, err := store.Open(dbPath, true)
	if err != nil {
		return wrapRuntime(err)
	}
	defer st.Close()

	_, diagnostics, err := st.Save(ctx, store.SaveInput{
		ScannedAt:  result.ScannedAt,
		DurationMs: result.Duration.Milliseconds(),
		Entries:    result.Entries,
	})
	for _, d := range diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}
	return err
}
