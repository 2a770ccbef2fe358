package messagesgorm

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cuihairu/smshook/internal/ports"
)

// Predicate is a typed filter over the messages table. Values always travel
// as bound parameters.
type Predicate interface {
	Expression() clause.Expression
}

type fromEquals string

// FromEquals matches from_msisdn exactly.
func FromEquals(msisdn string) Predicate { return fromEquals(msisdn) }

func (p fromEquals) Expression() clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "from_msisdn"}, Value: string(p)}
}

type tsSince string

// TsSince is an inclusive lower bound on ts, compared as strings.
func TsSince(ts string) Predicate { return tsSince(ts) }

func (p tsSince) Expression() clause.Expression {
	return clause.Gte{Column: clause.Column{Name: "ts"}, Value: string(p)}
}

type textContains string

// TextContains matches messages whose text contains q. LIKE wildcards in q
// are escaped; NULL text never matches. Case folding is the dialect's: ASCII
// case-insensitive on SQLite, case-sensitive on Postgres.
func TextContains(q string) Predicate { return textContains(q) }

const likeEscape = '!'

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (p textContains) Expression() clause.Expression {
	return clause.Expr{
		SQL:  "? LIKE ? ESCAPE '" + string(likeEscape) + "'",
		Vars: []any{clause.Column{Name: "text"}, "%" + likeEscaper.Replace(string(p)) + "%"},
	}
}

// PredicatesFor turns the non-empty filters of q into predicates.
func PredicatesFor(q ports.MessageQuery) []Predicate {
	var out []Predicate
	if q.From != "" {
		out = append(out, FromEquals(q.From))
	}
	if q.Since != "" {
		out = append(out, TsSince(q.Since))
	}
	if q.TextContains != "" {
		out = append(out, TextContains(q.TextContains))
	}
	return out
}

func filtered(preds []Predicate) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		for _, p := range preds {
			tx = tx.Where(p.Expression())
		}
		return tx
	}
}
