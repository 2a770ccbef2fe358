package messagesgorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cuihairu/smshook/internal/ports"
)

// TopSendersLimit caps the per-sender breakdown in Stats.
const TopSendersLimit = 10

var (
	ErrNotFound    = errors.New("message not found")
	ErrInvalidPage = errors.New("invalid page: limit must be >= 1 and offset >= 0")
)

type Option func(*Repo)

// WithClock overrides the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(r *Repo) {
		if now != nil {
			r.now = now
		}
	}
}

// Repo stores messages in a single table keyed by message_id. The underlying
// gorm handle owns a connection pool and is safe for concurrent use.
type Repo struct {
	db  *gorm.DB
	now func() time.Time
}

var _ ports.MessagesRepository = (*Repo)(nil)

func NewRepo(db *gorm.DB, opts ...Option) *Repo {
	r := &Repo{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert persists m unless its message_id already exists. Uniqueness is
// decided by the primary key within a single statement, so concurrent
// inserts of one id yield exactly one Created.
func (r *Repo) Insert(ctx context.Context, m *ports.Message) (ports.InsertResult, error) {
	rec := fromDomain(m)
	rec.CreatedAt = FormatCreatedAt(r.now())
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "message_id"}}, DoNothing: true}).
		Create(rec)
	if err := res.Error; err != nil {
		// some dialects still raise the violation; TranslateError maps it
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.Duplicate, nil
		}
		return 0, fmt.Errorf("insert message %q: %w", m.MessageID, err)
	}
	if res.RowsAffected == 0 {
		return ports.Duplicate, nil
	}
	m.CreatedAt = rec.CreatedAt
	return ports.Created, nil
}

// Query returns one page of matching messages ordered by (ts, message_id)
// and the number of matches before paging.
func (r *Repo) Query(ctx context.Context, q ports.MessageQuery) ([]*ports.Message, int64, error) {
	if q.Limit < 1 || q.Offset < 0 {
		return nil, 0, ErrInvalidPage
	}
	scope := filtered(PredicatesFor(q))

	var total int64
	if err := r.db.WithContext(ctx).Model(&MessageRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	var rows []*MessageRecord
	err := r.db.WithContext(ctx).Model(&MessageRecord{}).Scopes(scope).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "ts"}},
			{Column: clause.Column{Name: "message_id"}},
		}}).
		Limit(q.Limit).Offset(q.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	out := make([]*ports.Message, 0, len(rows))
	for _, rec := range rows {
		out = append(out, rec.toDomain())
	}
	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, messageID string) (*ports.Message, error) {
	var rec MessageRecord
	err := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "message_id"}, Value: messageID}).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message %q: %w", messageID, err)
	}
	return rec.toDomain(), nil
}

// Ping runs a trivial query through the pool.
func (r *Repo) Ping(ctx context.Context) error {
	var one int
	return r.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}
