package main

import (
	"errors"
	"fmt"
	"os"

	"roster/internal/config"
	"roster/internal/logging"
	"roster/internal/metrics"
	"roster/internal/service"
	"roster/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgPath string
	verbose bool

	cfg       *config.Config
	logger    *zap.Logger
	blob      storage.Blob
	closeBlob func() error
	stats     *metrics.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Student roster editor",
	Long: `roster keeps a list of students in a single persisted slot and edits it
through a web page, one-shot commands or a terminal UI.

Storage is selected with ROSTER_STORAGE_DRIVER (memory, file, sqlite,
postgres, redis, s3) or the storage.driver key of a YAML config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.LogLevel, verbose)
		if err != nil {
			return err
		}

		blob, closeBlob, err = storage.Open(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		logger.Debug("storage opened",
			zap.String("driver", cfg.Storage.Driver),
			zap.String("key", cfg.Storage.Key))

		stats = metrics.New()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeBlob != nil {
			if err := closeBlob(); err != nil {
				logger.Warn("failed to close storage", zap.Error(err))
			}
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newStore binds a roster store to the opened blob.
func newStore(l *zap.Logger) *service.RosterStore {
	return service.NewRosterStore(blob, cfg.Storage.Key, service.WithLogger(l))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	registerCommands()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// The controller already told the user about command failures.
		var shown *reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
