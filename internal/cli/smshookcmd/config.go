package smshookcmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	common "github.com/cuihairu/smshook/internal/cli/common"
	"github.com/cuihairu/smshook/internal/db"
)

// NewConfig returns `smshook config` with its `check` subcommand.
func NewConfig() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Inspect ingest service configuration"}

	var (
		file     string
		includes []string
		profile  string
	)
	check := &cobra.Command{
		Use:   "check",
		Short: "Load the ingest config, expand env and validate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.LoadWithIncludes(file, includes)
			if err != nil {
				return fmt.Errorf("load %s: %w", file, err)
			}
			if v, err = common.ApplyProfile(v, profile); err != nil {
				return err
			}
			if err := common.ValidateIngestConfig(v); err != nil {
				return fmt.Errorf("config invalid: %w", err)
			}
			dialect, _ := db.Resolve(v.GetString("database.datasource"))
			slog.Info("config valid", "file", file, "dialect", dialect, "audit_sinks", v.GetStringSlice("audit.sinks"))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "config OK (database: %s)\n", dialect)
			return err
		},
	}
	check.Flags().StringVarP(&file, "file", "f", "etc/ingest.yaml", "ingest config file")
	check.Flags().StringSliceVar(&includes, "include", nil, "extra config files merged in order")
	check.Flags().StringVar(&profile, "profile", "", "overlay profiles.<name>")
	cmd.AddCommand(check)
	return cmd
}
