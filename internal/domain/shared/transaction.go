package shared

import "context"

// TransactionScope runs fn inside one database transaction. The transaction
// travels in the context passed to fn; repositories called with that context
// join it. Calling Execute with a context that already carries a transaction
// reuses it instead of opening a nested transaction or savepoint.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
