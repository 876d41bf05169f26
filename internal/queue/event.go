// Package queue defines the messages exchanged over the broker and
// the consumer that applies them.
package queue

// Aggregate kinds a bootcamp row maintains.
const (
	AggregateRating = "rating"
	AggregateCost   = "cost"
)

// RecomputeEvent asks the consumer to refresh one aggregate of one
// bootcamp. Published after course and review mutations so request
// latency never pays for the recomputation.
type RecomputeEvent struct {
	BootcampID uint64 `json:"bootcamp_id"`
	Aggregate  string `json:"aggregate"` // rating | cost
	OccurredAt string `json:"occurred_at"`
}
