package domain

// Snapshot is a point-in-time capture of marketing context at a single page
// view. Marketing fields are optional; the four context fields at the bottom
// are always populated by the extractor. An empty string means the parameter
// was absent from the URL.
type Snapshot struct {
	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
	UTMTerm     string `json:"utmTerm,omitempty"`
	UTMContent  string `json:"utmContent,omitempty"`

	GCLID    string `json:"gclid,omitempty"`
	GBRAID   string `json:"gbraid,omitempty"`
	WBRAID   string `json:"wbraid,omitempty"`
	FBCLID   string `json:"fbclid,omitempty"`
	MSCLIKID string `json:"msclikid,omitempty"`
	DCLID    string `json:"dclid,omitempty"`
	TTCLID   string `json:"ttclid,omitempty"`
	TWCLID   string `json:"twclid,omitempty"`
	LiFatID  string `json:"li_fat_id,omitempty"`

	FBC       string `json:"fbc,omitempty"`
	FBP       string `json:"fbp,omitempty"`
	FBEventID string `json:"fbEventId,omitempty"`

	CampaignID string `json:"campaignId,omitempty"`
	MediumID   string `json:"mediumId,omitempty"`
	Medium     string `json:"medium,omitempty"`

	Referrer  string `json:"referrer"`
	URL       string `json:"url"`
	UserAgent string `json:"userAgent"`
	Timestamp string `json:"timestamp"`
}

// QueryParamBinding maps one recognized URL query parameter to the snapshot
// field it populates. Bindings are evaluated in declaration order, so when two
// parameters target the same field the later one wins.
type QueryParamBinding struct {
	Param  string
	Assign func(*Snapshot, string)
}

// QueryParamBindings enumerates every query parameter the extractor consumes.
// Keys are matched case-sensitively; anything else in the query string is
// ignored. Both msclkid and msclikid spellings feed the single MSCLIKID field,
// which mirrors the upstream funnel tracker's behavior.
var QueryParamBindings = []QueryParamBinding{
	{"utm_source", func(s *Snapshot, v string) { s.UTMSource = v }},
	{"utm_medium", func(s *Snapshot, v string) { s.UTMMedium = v }},
	{"utm_campaign", func(s *Snapshot, v string) { s.UTMCampaign = v }},
	{"utm_term", func(s *Snapshot, v string) { s.UTMTerm = v }},
	{"utm_content", func(s *Snapshot, v string) { s.UTMContent = v }},
	{"gclid", func(s *Snapshot, v string) { s.GCLID = v }},
	{"gbraid", func(s *Snapshot, v string) { s.GBRAID = v }},
	{"wbraid", func(s *Snapshot, v string) { s.WBRAID = v }},
	{"fbclid", func(s *Snapshot, v string) { s.FBCLID = v }},
	{"msclkid", func(s *Snapshot, v string) { s.MSCLIKID = v }},
	{"msclikid", func(s *Snapshot, v string) { s.MSCLIKID = v }},
	{"dclid", func(s *Snapshot, v string) { s.DCLID = v }},
	{"ttclid", func(s *Snapshot, v string) { s.TTCLID = v }},
	{"twclid", func(s *Snapshot, v string) { s.TWCLID = v }},
	{"li_fat_id", func(s *Snapshot, v string) { s.LiFatID = v }},
	{"fbc", func(s *Snapshot, v string) { s.FBC = v }},
	{"fbp", func(s *Snapshot, v string) { s.FBP = v }},
	{"fbEventId", func(s *Snapshot, v string) { s.FBEventID = v }},
	{"campaignId", func(s *Snapshot, v string) { s.CampaignID = v }},
	{"campaign_id", func(s *Snapshot, v string) { s.CampaignID = v }},
	{"mediumId", func(s *Snapshot, v string) { s.MediumID = v }},
	{"medium_id", func(s *Snapshot, v string) { s.MediumID = v }},
	{"medium", func(s *Snapshot, v string) { s.Medium = v }},
}

// HasUTM reports whether the snapshot carries one of the parameters that make
// a first touch authoritative: utm_source, gclid or fbclid. The merger uses
// this to decide whether an existing first touch may be backfilled.
func (s Snapshot) HasUTM() bool {
	return s.UTMSource != "" || s.GCLID != "" || s.FBCLID != ""
}
