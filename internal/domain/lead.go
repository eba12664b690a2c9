package domain

import "time"

// Lead is a captured form submission together with the attribution payload
// that was current at submission time.
type Lead struct {
	ID          string            `json:"id"`
	SiteID      string            `json:"site_id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone,omitempty"`
	Message     string            `json:"message,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	Attribution Payload           `json:"attribution"`
	CapturedAt  time.Time         `json:"captured_at"`
}

// Conversion is a tracked conversion event forwarded to the CRM.
type Conversion struct {
	SiteID      string    `json:"site_id"`
	EventType   string    `json:"event_type"`
	Value       float64   `json:"value,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Attribution Payload   `json:"attribution"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// LeadFilter narrows a lead query.
type LeadFilter struct {
	SiteID string     `json:"site_id,omitempty"`
	Email  string     `json:"email,omitempty"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
}

// LeadsResponse is the paginated API response for lead queries.
type LeadsResponse struct {
	Data    []Lead `json:"data"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
	HasMore bool   `json:"has_more"`
}
