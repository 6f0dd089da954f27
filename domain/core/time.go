package core

import (
	"time"
)

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// Before returns true if t is before u
func (t Timestamp) Before(u Timestamp) bool {
	return time.Time(t).Before(time.Time(u))
}

// After returns true if t is after u
func (t Timestamp) After(u Timestamp) bool {
	return time.Time(t).After(time.Time(u))
}

// Domain-specific time types
type (
	StartedAt  Timestamp
	FinishedAt Timestamp
)

// Constructors for domain time types
func NewStartedAt(t time.Time) StartedAt   { return StartedAt(NewTimestamp(t)) }
func NewFinishedAt(t time.Time) FinishedAt { return FinishedAt(NewTimestamp(t)) }

// Time conversions
func (t StartedAt) Time() time.Time  { return Timestamp(t).Time() }
func (t FinishedAt) Time() time.Time { return Timestamp(t).Time() }

// Elapsed returns the duration between start and finish.
func (t FinishedAt) Elapsed(start StartedAt) time.Duration {
	return t.Time().Sub(start.Time())
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

// String representations
func (t StartedAt) String() string  { return t.Time().Format(time.RFC3339) }
func (t FinishedAt) String() string { return t.Time().Format(time.RFC3339) }
