package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager groups multi-document writes (move, delete, copy) into a
// batch that commits together. Backends without transactions run fn directly.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
