package smshookcmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cuihairu/smshook/internal/validation"
)

var errInvalidPayload = errors.New("payload invalid")

// NewValidate returns `smshook validate`.
func NewValidate() *cobra.Command {
	var file, output string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a webhook payload and print the normalised message",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			msg, err := validation.ParseMessageJSON(body)
			var verr *validation.Error
			if errors.As(err, &verr) {
				for _, f := range verr.Fields {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f.Field, f.Message)
				}
				slog.Warn("payload rejected", "fields", len(verr.Fields))
				return errInvalidPayload
			}
			if err != nil {
				return err
			}
			return printOut(cmd.OutOrStdout(), output, messageView{
				MessageID: msg.MessageID,
				From:      msg.FromMSISDN,
				To:        msg.ToMSISDN,
				Ts:        msg.Ts,
				Text:      msg.Text,
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "payload file (default stdin)")
	addOutputFlag(cmd, &output)
	return cmd
}
