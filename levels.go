package tally

import (
	"context"
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/transaction"
)

// Levels computes the stock level of every known item as of the given time.
//
// The most recent snapshot dated on or before asOf is the baseline; items the
// snapshot does not cover start at zero. Transactions timestamped after the
// snapshot date (exclusive of the snapshot day start) up to and including
// asOf are replayed on top: deliveries and adjustments add, usage and waste
// subtract. The final value is clamped at zero. Clamping is terminal only, so
// replay order does not matter.
func (t *Tally) Levels(ctx context.Context, asOf time.Time) (map[string]float64, error) {
	levels := make(map[string]float64)

	base, err := t.store.LatestSnapshotOnOrBefore(ctx, asOf.Format(snapshot.DateLayout))
	var replayFrom time.Time
	switch {
	case err == nil:
		for itemID, level := range base.Levels {
			levels[itemID] = level
		}
		day, perr := time.ParseInLocation(snapshot.DateLayout, base.Date, asOf.Location())
		if perr != nil {
			return nil, perr
		}
		// Snapshot counts are end-of-day; replay starts the following midnight.
		replayFrom = day.AddDate(0, 0, 1)
	case IsNotFound(err):
		// No baseline: replay the full transaction history from zero.
	default:
		return nil, err
	}

	txns, err := t.store.QueryTransactions(ctx, transaction.Filter{To: asOf})
	if err != nil {
		return nil, err
	}

	for _, tx := range txns {
		if !replayFrom.IsZero() && tx.Timestamp.Before(replayFrom) {
			continue
		}
		levels[tx.ItemID.String()] += tx.Delta()
	}

	for itemID, level := range levels {
		if level < 0 {
			levels[itemID] = 0
		}
	}

	return levels, nil
}

// ItemLevel computes a single item's stock level as of the given time.
func (t *Tally) ItemLevel(ctx context.Context, itemID id.ItemID, asOf time.Time) (float64, error) {
	if _, err := t.store.GetItem(ctx, itemID); err != nil {
		return 0, err
	}

	levels, err := t.Levels(ctx, asOf)
	if err != nil {
		return 0, err
	}
	return levels[itemID.String()], nil
}
