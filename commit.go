package tally

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/pos"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/transaction"
	"github.com/xraph/tally/types"
)

// posUser is the recorded user on transactions written from POS extracts.
const posUser = "pos_automation"

// CommitReport summarizes one daily usage commit.
type CommitReport struct {
	Date        string      `json:"date"`
	Source      string      `json:"source"`
	Committed   int         `json:"committed"`
	Replaced    int         `json:"replaced"`
	Provisioned []string    `json:"provisioned,omitempty"`
	Result      *pos.Result `json:"result,omitempty"`
}

// CommitUsage writes a resolved day's component usage to the transaction log.
//
// Each component resolves (or provisions) a stock item and becomes one usage
// transaction timestamped 23:59 on the business date with user pos_automation.
// The whole batch lands through a single ReplaceDailyUsage call, so
// re-running a day replaces the prior import instead of duplicating it.
func (t *Tally) CommitUsage(ctx context.Context, res *pos.Result, source string) (*CommitReport, error) {
	if res == nil || res.Date == "" {
		return nil, fmt.Errorf("tally: commit requires a resolved result with a date: %w", ErrInvalidInput)
	}
	if source == "" {
		source = "pos_import"
	}

	day, err := time.ParseInLocation(snapshot.DateLayout, res.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("tally: usage date %q: %w", res.Date, ErrInvalidInput)
	}
	ts := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 0, 0, day.Location())

	keys := make([]string, 0, len(res.Components))
	for key := range res.Components {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	start := t.clock()
	report := &CommitReport{
		Date:   res.Date,
		Source: source,
		Result: res,
	}

	txns := make([]*transaction.Transaction, 0, len(keys))
	for _, key := range keys {
		usage := res.Components[key]
		if !usage.IsPositive() {
			continue
		}

		i, created, err := t.resolveOrProvisionItem(ctx, key, usage.Unit)
		if err != nil {
			return nil, fmt.Errorf("tally: resolve component %q: %w", key, err)
		}
		if created {
			report.Provisioned = append(report.Provisioned, key)
		}

		txns = append(txns, &transaction.Transaction{
			Entity:    types.NewEntity(),
			ID:        id.NewTransactionID(),
			ItemID:    i.ID,
			Type:      transaction.TypeUsage,
			Quantity:  usage.Amount,
			Timestamp: ts,
			User:      posUser,
			Notes:     "POS daily usage: " + key,
			Source:    source,
		})
	}

	removed, err := t.store.ReplaceDailyUsage(ctx, source, day, []transaction.Type{transaction.TypeUsage}, txns)
	if err != nil {
		return nil, err
	}
	report.Committed = len(txns)
	report.Replaced = removed

	for _, tx := range txns {
		t.plugins.EmitTransactionRecorded(ctx, tx)
	}
	t.plugins.EmitUsageCommitted(ctx, res.Date, len(txns), t.clock().Sub(start))

	t.logger.Info("committed daily usage",
		"date", res.Date,
		"source", source,
		"transactions", len(txns),
		"replaced", removed,
		"provisioned", len(report.Provisioned),
		"unmatched", len(res.Unmatched),
	)

	return report, nil
}
