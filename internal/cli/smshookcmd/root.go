package smshookcmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	common "github.com/cuihairu/smshook/internal/cli/common"
)

// NewRoot returns the smshook command tree.
func NewRoot() *cobra.Command {
	var (
		logLevel, logFormat, logFile   string
		logMaxSize, logBackups, logAge int
		logCompress                    bool
	)
	root := &cobra.Command{
		Use:           "smshook",
		Short:         "Operator tooling for the smshook ingest service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			common.SetupLoggerWithFile(logLevel, logFormat, logFile, logMaxSize, logBackups, logAge, logCompress)
			slog.Debug("logger ready", "level", logLevel, "format", logFormat)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text|json")
	pf.StringVar(&logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	pf.IntVar(&logMaxSize, "log-max-size", 100, "max size in MB before rotation")
	pf.IntVar(&logBackups, "log-max-backups", 3, "rotated files to keep")
	pf.IntVar(&logAge, "log-max-age", 7, "days to keep rotated files")
	pf.BoolVar(&logCompress, "log-compress", false, "gzip rotated files")

	root.AddCommand(NewSign())
	root.AddCommand(NewValidate())
	root.AddCommand(NewMessages())
	root.AddCommand(NewStats())
	root.AddCommand(NewConfig())
	root.AddCommand(NewAudit())
	return root
}
