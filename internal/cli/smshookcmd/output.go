package smshookcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func addOutputFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "output", "o", "json", "output format: json|yaml")
}

func printOut(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (json|yaml)", format)
	}
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

type messageView struct {
	MessageID string  `json:"message_id" yaml:"message_id"`
	From      string  `json:"from" yaml:"from"`
	To        string  `json:"to" yaml:"to"`
	Ts        string  `json:"ts" yaml:"ts"`
	Text      *string `json:"text" yaml:"text"`
	CreatedAt string  `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

type messagesView struct {
	Data   []messageView `json:"data" yaml:"data"`
	Total  int64         `json:"total" yaml:"total"`
	Limit  int           `json:"limit" yaml:"limit"`
	Offset int           `json:"offset" yaml:"offset"`
}

type senderView struct {
	From  string `json:"from" yaml:"from"`
	Count int64  `json:"count" yaml:"count"`
}

type statsView struct {
	TotalMessages     int64        `json:"total_messages" yaml:"total_messages"`
	SendersCount      int64        `json:"senders_count" yaml:"senders_count"`
	MessagesPerSender []senderView `json:"messages_per_sender" yaml:"messages_per_sender"`
	FirstMessageTs    *string      `json:"first_message_ts" yaml:"first_message_ts"`
	LastMessageTs     *string      `json:"last_message_ts" yaml:"last_message_ts"`
}
