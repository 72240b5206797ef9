package ports

import "context"

// TxManager runs fn inside one storage transaction. Repositories called
// with the ctx passed to fn take part in that transaction. Nested calls
// reuse the outer transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
