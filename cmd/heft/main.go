package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/heftdev/heft/internal/platform"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var rerr *runtimeErr
		if errors.As(err, &rerr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "heft",
	Short: "A disk space auditor for developer machines",
	Long: `heft finds the disk space developer tooling leaves behind —
build artifacts, package-manager caches, container images and
volumes — and helps you decide what to reclaim.`,
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(tuiCmd)
}

// defaultDBPath resolves the snapshot database's default location under the
// platform data directory (C1). Flag defaults are computed once at program
// startup, before any command's RunE runs, so platform detection failure
// here falls back to a cwd-relative path rather than aborting startup.
func defaultDBPath() string {
	if plat, err := platform.Detect(); err == nil {
		return filepath.Join(plat.DataDir(), "heft.db")
	}
	return "./data/heft.db"
}

// defaultConfigPath resolves config.toml's default location under the
// platform config directory (C1), with the same startup-time fallback as
// defaultDBPath.
func defaultConfigPath() string {
	if plat, err := platform.Detect(); err == nil {
		return filepath.Join(plat.ConfigDir(), "config.toml")
	}
	return "config.toml"
}
