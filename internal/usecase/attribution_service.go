package usecase

import (
	"context"
	"time"

	"attrgo/internal/domain"
	"attrgo/pkg/logger"
	"attrgo/pkg/metrics"
)

// PageView carries the page context of one tracked request.
type PageView struct {
	SiteID    string
	URL       string
	Referrer  string
	UserAgent string
	VisitorID string
}

// AttributionService runs the extract -> merge -> save -> project cycle.
// Reads are update-then-read: any marketing parameters on the current page are
// folded into the stored record before the payload is computed, so a form
// submitted on a landing page never misses the click that led there.
type AttributionService struct {
	mirror    domain.RecordMirror
	mirrorTTL time.Duration
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// NewAttributionService creates the attribution engine facade. mirror may be
// nil when no server-side store is configured.
func NewAttributionService(mirror domain.RecordMirror, mirrorTTL time.Duration, log *logger.Logger, m *metrics.Metrics) *AttributionService {
	return &AttributionService{
		mirror:    mirror,
		mirrorTTL: mirrorTTL,
		logger:    log,
		metrics:   m,
	}
}

// Track folds the page view into the visitor's record, persists it through
// the given store and returns the projected payload. It never fails; degraded
// inputs degrade attribution quality, not the request.
func (s *AttributionService) Track(ctx context.Context, store domain.RecordStore, view PageView) domain.Payload {
	now := time.Now()
	log := s.logger.WithContext(ctx)

	existing := store.Load(view.SiteID)

	snapshot := ExtractFromURL(view.URL, view.Referrer, view.UserAgent, now)
	if snapshot != nil {
		s.metrics.RecordSnapshotExtraction("captured")
	} else {
		s.metrics.RecordSnapshotExtraction("empty")
	}

	record := Merge(existing, snapshot, view.URL, now)
	s.metrics.RecordMerge(mergeCase(existing, snapshot))

	store.Save(view.SiteID, record)
	s.mirrorRecord(ctx, view, record)

	payload := Project(record)
	s.metrics.RecordSessionSource(payload.LastAttributionSource.SessionSource)

	log.WithFields(map[string]interface{}{
		"site_id":        view.SiteID,
		"visit_count":    record.VisitCount,
		"session_source": payload.LastAttributionSource.SessionSource,
		"has_snapshot":   snapshot != nil,
	}).Debug("Tracked page view")

	return payload
}

// Clear drops the visitor's attribution record for a site.
func (s *AttributionService) Clear(store domain.RecordStore, siteID string) {
	store.Clear(siteID)
}

func (s *AttributionService) mirrorRecord(ctx context.Context, view PageView, record domain.Record) {
	if s.mirror == nil || view.VisitorID == "" {
		return
	}

	if err := s.mirror.Put(ctx, view.SiteID, view.VisitorID, record, s.mirrorTTL); err != nil {
		s.metrics.RecordMirrorWrite("failure")
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]interface{}{
			"site_id":    view.SiteID,
			"visitor_id": view.VisitorID,
		}).Warn("Failed to mirror attribution record")
		return
	}

	s.metrics.RecordMirrorWrite("success")
}

func mergeCase(existing *domain.Record, snapshot *domain.Snapshot) string {
	switch {
	case existing == nil && snapshot != nil:
		return "create"
	case existing == nil:
		return "create_minimal"
	case snapshot != nil:
		return "merge"
	default:
		return "revisit"
	}
}
