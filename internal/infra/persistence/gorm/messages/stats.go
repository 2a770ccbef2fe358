package messagesgorm

import (
	"context"
	"fmt"

	"github.com/cuihairu/smshook/internal/ports"
)

type totalsRow struct {
	Total   int64
	Senders int64
	FirstTs *string
	LastTs  *string
}

type senderRow struct {
	FromMSISDN string `gorm:"column:from_msisdn"`
	Cnt        int64  `gorm:"column:cnt"`
}

// Stats aggregates the whole table. Ties among top senders are broken by
// sender ascending so the result is reproducible.
func (r *Repo) Stats(ctx context.Context) (*ports.Summary, error) {
	var totals totalsRow
	err := r.db.WithContext(ctx).Model(&MessageRecord{}).
		Select("COUNT(*) AS total, COUNT(DISTINCT from_msisdn) AS senders, MIN(ts) AS first_ts, MAX(ts) AS last_ts").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("message totals: %w", err)
	}

	var rows []senderRow
	err = r.db.WithContext(ctx).Model(&MessageRecord{}).
		Select("from_msisdn, COUNT(*) AS cnt").
		Group("from_msisdn").
		Order("cnt DESC, from_msisdn ASC").
		Limit(TopSendersLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top senders: %w", err)
	}

	out := &ports.Summary{
		TotalMessages:     totals.Total,
		SendersCount:      totals.Senders,
		MessagesPerSender: make([]ports.SenderCount, 0, len(rows)),
		FirstTs:           totals.FirstTs,
		LastTs:            totals.LastTs,
	}
	for _, row := range rows {
		out.MessagesPerSender = append(out.MessagesPerSender, ports.SenderCount{From: row.FromMSISDN, Count: row.Cnt})
	}
	return out, nil
}
