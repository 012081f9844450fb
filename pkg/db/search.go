package db

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

type SortField struct {
	Column    string
	Direction SortDirection
}

// Pager limits query results. PagerTwo is used by OneX lookups so that
// pg.ErrMultiRows can surface when a filter unexpectedly matches more
// than one row.
type Pager struct {
	Page     int
	PageSize int
}

var (
	PagerDefault = Pager{}
	PagerOne     = Pager{PageSize: 1}
	PagerTwo     = Pager{PageSize: 2}
)

func (p Pager) Apply(q *orm.Query) *orm.Query {
	if p.PageSize > 0 {
		q = q.Limit(p.PageSize)
		if p.Page > 1 {
			q = q.Offset((p.Page - 1) * p.PageSize)
		}
	}
	return q
}

// OpFunc modifies a query before execution.
type OpFunc func(query *orm.Query)

func applyOps(q *orm.Query, ops ...OpFunc) {
	for _, op := range ops {
		op(q)
	}
}

// WithColumns limits selected (or updated) columns.
func WithColumns(cols ...string) OpFunc {
	return func(q *orm.Query) {
		q.Column(cols...)
	}
}

// WithSort adds ORDER BY clauses.
func WithSort(fields ...SortField) OpFunc {
	return func(q *orm.Query) {
		for _, f := range fields {
			q.OrderExpr("?TableAlias.? ?", pg.Ident(f.Column), pg.Safe(f.Direction))
		}
	}
}

type searcher interface {
	Apply(query *orm.Query) *orm.Query
}

func buildQuery(ctx context.Context, dbo orm.DB, model interface{}, search searcher, pager Pager, ops ...OpFunc) *orm.Query {
	q := dbo.ModelContext(ctx, model)
	if search != nil {
		q = search.Apply(q)
	}
	q = pager.Apply(q)
	applyOps(q, ops...)

	return q
}

type TransactionSearch struct {
	ID           *int
	ChatID       *int64
	FileID       *string
	CreatedAtGte *time.Time
	CreatedAtLt  *time.Time
}

func (s *TransactionSearch) Apply(q *orm.Query) *orm.Query {
	if s == nil {
		return q
	}
	if s.ID != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Transaction.ID), *s.ID)
	}
	if s.ChatID != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Transaction.ChatID), *s.ChatID)
	}
	if s.FileID != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Transaction.FileID), *s.FileID)
	}
	if s.CreatedAtGte != nil {
		q = q.Where("?TableAlias.? >= ?", pg.Ident(Columns.Transaction.CreatedAt), *s.CreatedAtGte)
	}
	if s.CreatedAtLt != nil {
		q = q.Where("?TableAlias.? < ?", pg.Ident(Columns.Transaction.CreatedAt), *s.CreatedAtLt)
	}
	return q
}

type SubscriptionSearch struct {
	ID     *int
	ChatID *int64
	Plan   *string
}

func (s *SubscriptionSearch) Apply(q *orm.Query) *orm.Query {
	if s == nil {
		return q
	}
	if s.ID != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Subscription.ID), *s.ID)
	}
	if s.ChatID != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Subscription.ChatID), *s.ChatID)
	}
	if s.Plan != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Subscription.Plan), *s.Plan)
	}
	return q
}

type PaymentSearch struct {
	ID        *int
	ChatID    *int64
	GatewayID *string
	Status    *string
}

func (s *PaymentSearch) Apply(q *orm.Query) *orm.Query {
	if s == nil {
		return q
	}
	if s.ID != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Payment.ID), *s.ID)
	}
	if s.ChatID != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Payment.ChatID), *s.ChatID)
	}
	if s.GatewayID != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Payment.GatewayID), *s.GatewayID)
	}
	if s.Status != nil {
		q = q.Where("?TableAlias.? = ?", pg.Ident(Columns.Payment.Status), *s.Status)
	}
	return q
}
