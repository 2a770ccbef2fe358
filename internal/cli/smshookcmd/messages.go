package smshookcmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cuihairu/smshook/internal/ports"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// NewMessages returns `smshook messages`, the list endpoint against a DSN.
func NewMessages() *cobra.Command {
	var (
		q      ports.MessageQuery
		output string
	)
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List stored messages ordered by ts, message_id",
	}
	v := dbFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if q.Limit < 1 || q.Limit > maxLimit {
			return fmt.Errorf("--limit must be between 1 and %d", maxLimit)
		}
		if q.Offset < 0 {
			return fmt.Errorf("--offset must be >= 0")
		}
		repo, closeFn, err := openRepo(v.GetString("db"))
		if err != nil {
			return err
		}
		defer closeFn()

		rows, total, err := repo.Query(cmd.Context(), q)
		if err != nil {
			return err
		}
		slog.Debug("messages listed", "total", total, "page", len(rows))
		out := messagesView{Data: make([]messageView, 0, len(rows)), Total: total, Limit: q.Limit, Offset: q.Offset}
		for _, m := range rows {
			out.Data = append(out.Data, messageView{
				MessageID: m.MessageID,
				From:      m.FromMSISDN,
				To:        m.ToMSISDN,
				Ts:        m.Ts,
				Text:      m.Text,
				CreatedAt: m.CreatedAt,
			})
		}
		return printOut(cmd.OutOrStdout(), output, out)
	}
	f := cmd.Flags()
	f.IntVar(&q.Limit, "limit", defaultLimit, "page size (1-100)")
	f.IntVar(&q.Offset, "offset", 0, "rows to skip")
	f.StringVar(&q.From, "from", "", "sender MSISDN, exact match")
	f.StringVar(&q.Since, "since", "", "inclusive lower bound on ts")
	f.StringVar(&q.TextContains, "q", "", "substring of text")
	addOutputFlag(cmd, &output)
	return cmd
}
