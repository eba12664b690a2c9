package domain

// SourceBlock is one attribution block of the GHL payload. Every field is
// always present in the JSON; pointer fields render as null when the
// underlying parameter was never captured. The schema is fixed regardless of
// which parameters a visit actually carried, so downstream CRM mappings never
// see a moving shape.
type SourceBlock struct {
	SessionSource string  `json:"sessionSource"`
	URL           *string `json:"url"`
	Campaign      *string `json:"campaign"`
	UTMSource     *string `json:"utmSource"`
	UTMMedium     *string `json:"utmMedium"`
	UTMContent    *string `json:"utmContent"`
	UTMTerm       *string `json:"utmTerm"`
	UTMKeyword    *string `json:"utmKeyword"`
	UTMMatchtype  *string `json:"utmMatchtype"`
	Referrer      *string `json:"referrer"`
	CampaignID    *string `json:"campaignId"`
	FBCLID        *string `json:"fbclid"`
	GCLID         *string `json:"gclid"`
	MSCLIKID      *string `json:"msclikid"`
	DCLID         *string `json:"dclid"`
	FBC           *string `json:"fbc"`
	FBP           *string `json:"fbp"`
	FBEventID     *string `json:"fbEventId"`
	UserAgent     *string `json:"userAgent"`
	IP            *string `json:"ip"`
	GAClientID    *string `json:"gaClientId"`
	GASessionID   *string `json:"gaSessionId"`
	Medium        string  `json:"medium"`
	MediumID      *string `json:"mediumId"`
	AdName        *string `json:"adName"`
	AdGroupID     *string `json:"adGroupId"`
	AdID          *string `json:"adId"`
	GBRAID        *string `json:"gbraid"`
	WBRAID        *string `json:"wbraid"`
}

// Payload is the projection of a Record handed to GoHighLevel alongside form
// submissions and conversion events. It has no lifecycle of its own; it is
// recomputed from the record on every read.
type Payload struct {
	AttributionSource     SourceBlock `json:"attributionSource"`
	LastAttributionSource SourceBlock `json:"lastAttributionSource"`
	VisitCount            int         `json:"visitCount"`
	FirstTouchTimestamp   string      `json:"firstTouchTimestamp"`
	LastTouchTimestamp    string      `json:"lastTouchTimestamp"`
}
