package snapshot

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// DateLayout is the business-day format snapshots are keyed by.
const DateLayout = "2006-01-02"

// Snapshot is a full physical count of stock levels for one business day.
// It supersedes any earlier snapshot recorded for the same date and acts
// as the replay baseline for level calculations after that date.
type Snapshot struct {
	types.Entity
	ID        id.SnapshotID      `json:"id"`
	Date      string             `json:"date"` // YYYY-MM-DD
	Levels    map[string]float64 `json:"items"` // item ID -> counted quantity
	CreatedBy string             `json:"created_by"`
	Notes     string             `json:"notes,omitempty"`
}

// Day returns the snapshot date as a time at midnight UTC.
func (s *Snapshot) Day() (time.Time, error) {
	return time.Parse(DateLayout, s.Date)
}

// Level returns the counted level for an item, zero if the item was not
// present in the count.
func (s *Snapshot) Level(itemID id.ItemID) float64 {
	return s.Levels[itemID.String()]
}

// Covers reports whether the snapshot includes a count for the item.
func (s *Snapshot) Covers(itemID id.ItemID) bool {
	_, ok := s.Levels[itemID.String()]
	return ok
}
