package smshookcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuihairu/smshook/internal/audit"
)

// NewAudit returns `smshook audit` with its `verify` subcommand.
func NewAudit() *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "Work with chained audit files"}

	var file string
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Check the hash chain of an audit file",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := audit.VerifyChain(file)
			if err != nil {
				return fmt.Errorf("%s: %d valid records before failure: %w", file, n, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d records OK\n", n)
			return err
		},
	}
	verify.Flags().StringVar(&file, "file", audit.DefaultChainFile, "chained audit file")
	cmd.AddCommand(verify)
	return cmd
}
