package transaction

import (
	"context"
	"time"

	"github.com/xraph/tally/id"
)

type Store interface {
	Append(ctx context.Context, tx *Transaction) error
	Get(ctx context.Context, txID id.TransactionID) (*Transaction, error)
	Query(ctx context.Context, f Filter) ([]*Transaction, error)

	// ReplaceDailyUsage atomically replaces all transactions of the given
	// types recorded by source for the business day containing date with
	// txns. The replaced rows are preserved in a backup before removal.
	ReplaceDailyUsage(ctx context.Context, source string, date time.Time, types []Type, txns []*Transaction) (removed int, err error)
}
