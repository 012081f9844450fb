package recibo

import "recibo/pkg/db"

type Transaction struct {
	db.Transaction
}

func NewTransaction(in *db.Transaction) *Transaction {
	if in == nil {
		return nil
	}

	return &Transaction{
		Transaction: *in,
	}
}

type Subscription struct {
	db.Subscription
}

func NewSubscription(in *db.Subscription) *Subscription {
	if in == nil {
		return nil
	}

	return &Subscription{
		Subscription: *in,
	}
}

type Payment struct {
	db.Payment
}

func NewPayment(in *db.Payment) *Payment {
	if in == nil {
		return nil
	}

	return &Payment{
		Payment: *in,
	}
}

// MapP converts slice of type T to slice of type M with given converter with pointers.
func MapP[T, M any](a []T, f func(*T) *M) []M {
	n := make([]M, len(a))
	for i := range a {
		n[i] = *f(&a[i])
	}
	return n
}
