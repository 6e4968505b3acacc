package repositories

import "context"

// TxFn is a function that runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside a single database transaction.
// Used only where one logical operation spans several writes (user signup
// creating the default categories); membership mutation stays a single
// field replace and never needs it.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
