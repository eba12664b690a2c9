package usecase

import (
	"time"

	"attrgo/internal/domain"
)

// Merge folds a new page view into the stored attribution record and returns
// the next record. It never fails: a malformed existing record simply has its
// missing parts treated as absent. The caller persists the result.
//
// Rules, in priority order:
//  1. no record, snapshot present  -> first and last touch both become the snapshot
//  2. no record, no snapshot       -> minimal record carrying only url+timestamp
//  3. record exists, snapshot present -> last touch is replaced; first touch is
//     replaced too (backfill) only when the stored first touch has no
//     utm_source/gclid/fbclid and the snapshot does
//  4. record exists, no snapshot   -> only lastTouch.url and lastTouch.timestamp move
//
// visitCount increments by exactly one per call and is never reset.
func Merge(existing *domain.Record, snapshot *domain.Snapshot, currentURL string, now time.Time) domain.Record {
	timestamp := now.UTC().Format(time.RFC3339)

	if existing == nil {
		if snapshot != nil {
			return domain.Record{
				FirstTouch:          *snapshot,
				LastTouch:           *snapshot,
				FirstTouchTimestamp: timestamp,
				LastTouchTimestamp:  timestamp,
				VisitCount:          1,
			}
		}

		minimal := domain.Snapshot{URL: currentURL, Timestamp: timestamp}
		return domain.Record{
			FirstTouch:          minimal,
			LastTouch:           minimal,
			FirstTouchTimestamp: timestamp,
			LastTouchTimestamp:  timestamp,
			VisitCount:          1,
		}
	}

	next := *existing
	next.VisitCount++
	next.LastTouchTimestamp = timestamp

	if snapshot != nil {
		// A first touch that never saw a marketing parameter is upgraded
		// wholesale the first time one arrives. Once it has one, it is
		// immutable.
		if !next.FirstTouch.HasUTM() && snapshot.HasUTM() {
			next.FirstTouch = *snapshot
		}
		next.LastTouch = *snapshot
		return next
	}

	next.LastTouch.URL = currentURL
	next.LastTouch.Timestamp = timestamp
	return next
}
