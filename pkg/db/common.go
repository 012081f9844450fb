package db

import (
	"context"
	"errors"
	"io"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

type CommonRepo struct {
	db   orm.DB
	sort map[string][]SortField
}

// NewCommonRepo returns new repository
func NewCommonRepo(db orm.DB) CommonRepo {
	return CommonRepo{
		db: db,
		sort: map[string][]SortField{
			Tables.Transaction.Name:  {{Column: Columns.Transaction.CreatedAt, Direction: SortAsc}},
			Tables.Subscription.Name: {{Column: Columns.Subscription.CreatedAt, Direction: SortDesc}},
			Tables.Payment.Name:      {{Column: Columns.Payment.CreatedAt, Direction: SortDesc}},
		},
	}
}

// WithTransaction is a function that wraps CommonRepo with pg.Tx transaction.
func (cr CommonRepo) WithTransaction(tx *pg.Tx) CommonRepo {
	cr.db = tx
	return cr
}

/*** Transaction ***/

// DefaultTransactionSort returns default sort (ascending by creation time,
// which defines the canonical 1-based positions used by delete/display).
func (cr CommonRepo) DefaultTransactionSort() OpFunc {
	return WithSort(cr.sort[Tables.Transaction.Name]...)
}

// TransactionByID is a function that returns Transaction by ID(s) or nil.
func (cr CommonRepo) TransactionByID(ctx context.Context, id int, ops ...OpFunc) (*Transaction, error) {
	return cr.OneTransaction(ctx, &TransactionSearch{ID: &id}, ops...)
}

// OneTransaction is a function that returns one Transaction by filters. It could return pg.ErrMultiRows.
func (cr CommonRepo) OneTransaction(ctx context.Context, search *TransactionSearch, ops ...OpFunc) (*Transaction, error) {
	obj := &Transaction{}
	err := buildQuery(ctx, cr.db, obj, search, PagerTwo, ops...).Select()

	if errors.Is(err, pg.ErrMultiRows) {
		return nil, err
	} else if errors.Is(err, pg.ErrNoRows) || errors.Is(err, io.EOF) {
		return nil, nil
	}

	return obj, err
}

// TransactionsByFilters returns Transaction list.
func (cr CommonRepo) TransactionsByFilters(ctx context.Context, search *TransactionSearch, pager Pager, ops ...OpFunc) (transactions []Transaction, err error) {
	err = buildQuery(ctx, cr.db, &transactions, search, pager, ops...).Select()
	return
}

// CountTransactions returns count
func (cr CommonRepo) CountTransactions(ctx context.Context, search *TransactionSearch, ops ...OpFunc) (int, error) {
	return buildQuery(ctx, cr.db, &Transaction{}, search, PagerOne, ops...).Count()
}

// AddTransaction adds Transaction to DB and returns the stored row,
// including the assigned id and created_at.
func (cr CommonRepo) AddTransaction(ctx context.Context, transaction *Transaction, ops ...OpFunc) (*Transaction, error) {
	q := cr.db.ModelContext(ctx, transaction)
	if len(ops) == 0 {
		q = q.ExcludeColumn(Columns.Transaction.CreatedAt).Returning("*")
	}
	applyOps(q, ops...)
	_, err := q.Insert()

	return transaction, err
}

// UpdateTransaction updates Transaction in DB.
func (cr CommonRepo) UpdateTransaction(ctx context.Context, transaction *Transaction, ops ...OpFunc) (bool, error) {
	q := cr.db.ModelContext(ctx, transaction).WherePK()
	if len(ops) == 0 {
		q = q.ExcludeColumn(Columns.Transaction.ID, Columns.Transaction.CreatedAt)
	}
	applyOps(q, ops...)
	res, err := q.Update()
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, err
}

// DeleteTransaction removes Transaction from DB permanently.
func (cr CommonRepo) DeleteTransaction(ctx context.Context, id int) (deleted bool, err error) {
	res, err := cr.db.ModelContext(ctx, &Transaction{ID: id}).WherePK().Delete()
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

// DeleteTransactionsByFilters removes all matching transactions and returns
// the number of removed rows. Zero is a valid result.
func (cr CommonRepo) DeleteTransactionsByFilters(ctx context.Context, search *TransactionSearch) (int, error) {
	res, err := buildQuery(ctx, cr.db, &Transaction{}, search, PagerDefault).Delete()
	if err != nil {
		return 0, err
	}

	return res.RowsAffected(), nil
}

/*** Subscription ***/

// DefaultSubscriptionSort returns default sort.
func (cr CommonRepo) DefaultSubscriptionSort() OpFunc {
	return WithSort(cr.sort[Tables.Subscription.Name]...)
}

// SubscriptionByID is a function that returns Subscription by ID(s) or nil.
func (cr CommonRepo) SubscriptionByID(ctx context.Context, id int, ops ...OpFunc) (*Subscription, error) {
	return cr.OneSubscription(ctx, &SubscriptionSearch{ID: &id}, ops...)
}

// OneSubscription is a function that returns one Subscription by filters. It could return pg.ErrMultiRows.
func (cr CommonRepo) OneSubscription(ctx context.Context, search *SubscriptionSearch, ops ...OpFunc) (*Subscription, error) {
	obj := &Subscription{}
	err := buildQuery(ctx, cr.db, obj, search, PagerTwo, ops...).Select()

	if errors.Is(err, pg.ErrMultiRows) {
		return nil, err
	} else if errors.Is(err, pg.ErrNoRows) || errors.Is(err, io.EOF) {
		return nil, nil
	}

	return obj, err
}

// SubscriptionsByFilters returns Subscription list.
func (cr CommonRepo) SubscriptionsByFilters(ctx context.Context, search *SubscriptionSearch, pager Pager, ops ...OpFunc) (subscriptions []Subscription, err error) {
	err = buildQuery(ctx, cr.db, &subscriptions, search, pager, ops...).Select()
	return
}

// CountSubscriptions returns count
func (cr CommonRepo) CountSubscriptions(ctx context.Context, search *SubscriptionSearch, ops ...OpFunc) (int, error) {
	return buildQuery(ctx, cr.db, &Subscription{}, search, PagerOne, ops...).Count()
}

// AddSubscription adds Subscription to DB.
func (cr CommonRepo) AddSubscription(ctx context.Context, subscription *Subscription, ops ...OpFunc) (*Subscription, error) {
	q := cr.db.ModelContext(ctx, subscription)
	if len(ops) == 0 {
		q = q.ExcludeColumn(Columns.Subscription.CreatedAt).Returning("*")
	}
	applyOps(q, ops...)
	_, err := q.Insert()

	return subscription, err
}

// UpdateSubscription updates Subscription in DB.
func (cr CommonRepo) UpdateSubscription(ctx context.Context, subscription *Subscription, ops ...OpFunc) (bool, error) {
	q := cr.db.ModelContext(ctx, subscription).WherePK()
	if len(ops) == 0 {
		q = q.ExcludeColumn(Columns.Subscription.ID, Columns.Subscription.CreatedAt)
	}
	applyOps(q, ops...)
	res, err := q.Update()
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, err
}

/*** Payment ***/

// DefaultPaymentSort returns default sort.
func (cr CommonRepo) DefaultPaymentSort() OpFunc {
	return WithSort(cr.sort[Tables.Payment.Name]...)
}

// PaymentByID is a function that returns Payment by ID(s) or nil.
func (cr CommonRepo) PaymentByID(ctx context.Context, id int, ops ...OpFunc) (*Payment, error) {
	return cr.OnePayment(ctx, &PaymentSearch{ID: &id}, ops...)
}

// OnePayment is a function that returns one Payment by filters. It could return pg.ErrMultiRows.
func (cr CommonRepo) OnePayment(ctx context.Context, search *PaymentSearch, ops ...OpFunc) (*Payment, error) {
	obj := &Payment{}
	err := buildQuery(ctx, cr.db, obj, search, PagerTwo, ops...).Select()

	if errors.Is(err, pg.ErrMultiRows) {
		return nil, err
	} else if errors.Is(err, pg.ErrNoRows) || errors.Is(err, io.EOF) {
		return nil, nil
	}

	return obj, err
}

// PaymentsByFilters returns Payment list.
func (cr CommonRepo) PaymentsByFilters(ctx context.Context, search *PaymentSearch, pager Pager, ops ...OpFunc) (payments []Payment, err error) {
	err = buildQuery(ctx, cr.db, &payments, search, pager, ops...).Select()
	return
}

// AddPayment adds Payment to DB.
func (cr CommonRepo) AddPayment(ctx context.Context, payment *Payment, ops ...OpFunc) (*Payment, error) {
	q := cr.db.ModelContext(ctx, payment)
	if len(ops) == 0 {
		q = q.ExcludeColumn(Columns.Payment.CreatedAt).Returning("*")
	}
	applyOps(q, ops...)
	_, err := q.Insert()

	return payment, err
}

// UpdatePayment updates Payment in DB.
func (cr CommonRepo) UpdatePayment(ctx context.Context, payment *Payment, ops ...OpFunc) (bool, error) {
	q := cr.db.ModelContext(ctx, payment).WherePK()
	if len(ops) == 0 {
		q = q.ExcludeColumn(Columns.Payment.ID, Columns.Payment.CreatedAt)
	}
	applyOps(q, ops...)
	res, err := q.Update()
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, err
}
