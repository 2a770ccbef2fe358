package smshookcmd

import (
	"github.com/spf13/cobra"
)

// NewStats returns `smshook stats`.
func NewStats() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate statistics over stored messages",
	}
	v := dbFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		repo, closeFn, err := openRepo(v.GetString("db"))
		if err != nil {
			return err
		}
		defer closeFn()

		s, err := repo.Stats(cmd.Context())
		if err != nil {
			return err
		}
		out := statsView{
			TotalMessages:     s.TotalMessages,
			SendersCount:      s.SendersCount,
			MessagesPerSender: make([]senderView, 0, len(s.MessagesPerSender)),
			FirstMessageTs:    s.FirstTs,
			LastMessageTs:     s.LastTs,
		}
		for _, sc := range s.MessagesPerSender {
			out.MessagesPerSender = append(out.MessagesPerSender, senderView{From: sc.From, Count: sc.Count})
		}
		return printOut(cmd.OutOrStdout(), output, out)
	}
	addOutputFlag(cmd, &output)
	return cmd
}
