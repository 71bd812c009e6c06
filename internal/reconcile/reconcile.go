// Package reconcile is the shared optimistic-update machinery used by the
// chat widget, the notification dropdown and the admin order board: a
// provisional record is shown immediately, then superseded by the backend's
// authoritative copy, merged in by stable identifier.
package reconcile

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Merge combines known records with an authoritative incoming snapshot.
// Known records are indexed first in order; incoming records overwrite or
// append by identifier, so the freshest authoritative copy always wins. The
// result is sorted by the supplied comparator. Merging the same snapshot
// twice yields the same list, and no identifier appears more than once.
func Merge[T any, K comparable](known, incoming []T, id func(T) K, less func(a, b T) bool) []T {
	out := make([]T, 0, len(known)+len(incoming))
	index := make(map[K]int, len(known)+len(incoming))
	upsert := func(rec T) {
		k := id(rec)
		if i, ok := index[k]; ok {
			out[i] = rec
			return
		}
		index[k] = len(out)
		out = append(out, rec)
	}
	for _, rec := range known {
		upsert(rec)
	}
	for _, rec := range incoming {
		upsert(rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// TempID fabricates a locally-unique provisional identifier. It can never
// collide with a backend id, so reconciliation drops it instead of matching
// it by content.
func TempID() string {
	return "temp-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}
