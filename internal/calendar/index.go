package calendar

import (
	"sort"
	"time"
)

// DateIndex buckets records by day key. It is read-only once built; rebuild
// it when the source records change.
type DateIndex[T any] struct {
	buckets map[string][]T
	dropped int
}

// BuildDateIndex groups records by the day key dateOf returns. Records whose
// date does not parse are skipped and counted. Bucket order follows input order.
func BuildDateIndex[T any](records []T, dateOf func(T) string) *DateIndex[T] {
	idx := &DateIndex[T]{buckets: make(map[string][]T)}
	for _, r := range records {
		d, ok := ParseDayKey(dateOf(r))
		if !ok {
			idx.dropped++
			continue
		}
		key := DayKey(d)
		idx.buckets[key] = append(idx.buckets[key], r)
	}
	return idx
}

func (idx *DateIndex[T]) Get(key string) []T {
	if idx == nil {
		return nil
	}
	return idx.buckets[key]
}

func (idx *DateIndex[T]) Count(key string) int {
	return len(idx.Get(key))
}

// Dropped is the number of records left out for an unusable date.
func (idx *DateIndex[T]) Dropped() int {
	if idx == nil {
		return 0
	}
	return idx.dropped
}

func (idx *DateIndex[T]) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.buckets)
}

// Upcoming returns up to limit records whose instant is at or after from,
// earliest first. Records without an instant are skipped.
func Upcoming[T any](records []T, from time.Time, limit int, at func(T) (time.Time, bool)) []T {
	type timed struct {
		rec T
		at  time.Time
	}
	var pending []timed
	for _, r := range records {
		t, ok := at(r)
		if !ok || t.Before(from) {
			continue
		}
		pending = append(pending, timed{rec: r, at: t})
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].at.Before(pending[j].at)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	out := make([]T, 0, len(pending))
	for _, p := range pending {
		out = append(out, p.rec)
	}
	return out
}
