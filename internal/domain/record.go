package domain

// Record is the durable per-(site, visitor) attribution state. It lives in a
// browser cookie (and optionally a server-side mirror) as URL-encoded JSON, so
// the JSON tags here define the wire format.
type Record struct {
	FirstTouch          Snapshot `json:"firstTouch"`
	LastTouch           Snapshot `json:"lastTouch"`
	FirstTouchTimestamp string   `json:"firstTouchTimestamp"`
	LastTouchTimestamp  string   `json:"lastTouchTimestamp"`
	VisitCount          int      `json:"visitCount"`
}

// RecordStore persists one Record per site for the current visitor. The
// primary implementation is the attribution cookie; Load returns nil both for
// a missing record and for one that fails to decode.
type RecordStore interface {
	Load(siteID string) *Record
	Save(siteID string, record Record)
	Clear(siteID string)
}
