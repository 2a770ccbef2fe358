package smshookcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cuihairu/smshook/internal/signature"
)

// NewSign returns `smshook sign`, which prints the X-Signature value for a body.
func NewSign() *cobra.Command {
	var file string
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the hex HMAC-SHA256 signature of a request body",
		RunE: func(cmd *cobra.Command, args []string) error {
			verifier, err := signature.NewVerifier(v.GetString("secret"))
			if err != nil {
				return fmt.Errorf("--secret or WEBHOOK_SECRET required: %w", err)
			}
			body, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), verifier.Sign(body))
			return err
		},
	}
	cmd.Flags().String("secret", "", "shared webhook secret")
	cmd.Flags().StringVar(&file, "file", "", "body file (default stdin)")
	_ = v.BindEnv("secret", "SMSHOOK_SECRET", "WEBHOOK_SECRET")
	_ = v.BindPFlag("secret", cmd.Flags().Lookup("secret"))
	return cmd
}
