package domain

import (
	"context"
	"time"
)

// LeadRepository stores captured leads for the portal API.
type LeadRepository interface {
	Store(ctx context.Context, lead Lead) error
	GetByFilter(ctx context.Context, filter LeadFilter) (*LeadsResponse, error)
}

// RecordMirror is an optional server-side copy of attribution records, keyed
// by (site, visitor). Implementations keep the same 30-day rolling window as
// the cookie. The mirror is advisory: the cookie stays authoritative and
// mirror failures must not block tracking.
type RecordMirror interface {
	Put(ctx context.Context, siteID, visitorID string, record Record, ttl time.Duration) error
	Get(ctx context.Context, siteID, visitorID string) (*Record, error)
}

// CRMClient forwards leads and conversion events to the downstream CRM.
type CRMClient interface {
	SubmitLead(ctx context.Context, lead Lead) error
	TrackConversion(ctx context.Context, conversion Conversion) error
}
