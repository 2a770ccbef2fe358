package messagesgorm

import (
	"time"

	"gorm.io/gorm"

	"github.com/cuihairu/smshook/internal/ports"
)

// CreatedAtLayout is the server-side ingestion timestamp format (UTC, microseconds).
const CreatedAtLayout = "2006-01-02T15:04:05.000000Z"

// MessageRecord is one row of the messages table. Ts and CreatedAt are kept as
// strings so ordering and min/max are lexical.
type MessageRecord struct {
	MessageID  string  `gorm:"column:message_id;primaryKey;size:255"`
	FromMSISDN string  `gorm:"column:from_msisdn;size:255;not null;index"`
	ToMSISDN   string  `gorm:"column:to_msisdn;size:255;not null"`
	Ts         string  `gorm:"column:ts;size:255;not null;index"`
	Text       *string `gorm:"column:text;type:text"`
	CreatedAt  string  `gorm:"column:created_at;size:64;not null;autoCreateTime:false"`
}

func (MessageRecord) TableName() string { return "messages" }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&MessageRecord{}) }

func FormatCreatedAt(t time.Time) string { return t.UTC().Format(CreatedAtLayout) }

func fromDomain(m *ports.Message) *MessageRecord {
	rec := &MessageRecord{
		MessageID:  m.MessageID,
		FromMSISDN: m.FromMSISDN,
		ToMSISDN:   m.ToMSISDN,
		Ts:         m.Ts,
	}
	if m.Text != nil {
		s := *m.Text
		rec.Text = &s
	}
	return rec
}

func (r *MessageRecord) toDomain() *ports.Message {
	return &ports.Message{
		MessageID:  r.MessageID,
		FromMSISDN: r.FromMSISDN,
		ToMSISDN:   r.ToMSISDN,
		Ts:         r.Ts,
		Text:       r.Text,
		CreatedAt:  r.CreatedAt,
	}
}
