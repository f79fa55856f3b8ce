package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jvegaf/harmony-sub000/internal/config"
	"github.com/jvegaf/harmony-sub000/internal/logger"
)

var (
	flagConfig  string
	flagVerbose bool

	cmdRoot = &cobra.Command{
		Use:   "harmony",
		Short: "Fix music library metadata from online catalogs",
		Long: `Harmony searches online track catalogs (Beatport, Traxsource, Bandcamp,
iTunes) for your library tracks, scores the results against the local
metadata and applies the best match automatically when confidence is
high enough. Uncertain matches are left for manual review.`,
		SilenceUsage: true,
	}
)

func main() {
	cmdRoot.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	cmdRoot.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose console output")

	cmdRoot.AddCommand(cmdFix())
	cmdRoot.AddCommand(cmdScan())
	cmdRoot.AddCommand(cmdServe())
	cmdRoot.AddCommand(cmdInitConfig())

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for a command run: the --config
// flag wins, otherwise the usual locations are searched, otherwise
// defaults apply.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.FindConfigFile()
	}

	if path == "" {
		cfg := config.DefaultConfig()
		cfg.Verbose = flagVerbose
		return cfg, nil
	}

	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// setupLogger builds the console logger and, when not verbose, mirrors
// output to a timestamped log file.
func setupLogger(cfg config.Config) *logger.Logger {
	log := logger.New(cfg.Verbose)

	if !cfg.Verbose {
		logDir := config.GetDefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
			return log
		}
		logFile := filepath.Join(logDir, fmt.Sprintf("harmony_%s.log", time.Now().Format("2006-01-02_15-04-05")))
		if err := log.SetFileLog(logFile); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
		} else {
			log.Debug("Logging to file: %s", logFile)
		}
	}

	return log
}
