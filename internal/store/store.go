// Package store holds timestamped rating entries behind a small key-value
// interface. Keys are slash separated ("account/mode/opponent"). Freshness is
// decided by the caller from Entry.Timestamp; backends only persist.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrCorrupt is returned by Get when a persisted entry cannot be decoded.
var ErrCorrupt = errors.New("corrupt cache entry")

type Entry struct {
	Timestamp int64 `json:"timestamp"`
	Rating    *int  `json:"rating"`
}

func NewEntry(now time.Time, rating *int) Entry {
	return Entry{Timestamp: now.Unix(), Rating: rating}
}

// Fresh reports whether the entry is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(time.Unix(e.Timestamp, 0)) < ttl
}

type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
	Invalidate(ctx context.Context, key string) error
}
