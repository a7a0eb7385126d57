package snapshot

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	// Put stores a snapshot, replacing any existing snapshot for the same date.
	Put(ctx context.Context, s *Snapshot) error
	Get(ctx context.Context, snapID id.SnapshotID) (*Snapshot, error)
	GetForDate(ctx context.Context, date string) (*Snapshot, error)

	// LatestOnOrBefore returns the most recent snapshot whose date is not
	// after the given date, ties broken by latest creation time.
	LatestOnOrBefore(ctx context.Context, date string) (*Snapshot, error)
	List(ctx context.Context, limit, offset int) ([]*Snapshot, error)
}
