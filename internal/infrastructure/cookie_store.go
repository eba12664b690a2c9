package infrastructure

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"attrgo/internal/domain"
	"attrgo/pkg/logger"
	"attrgo/pkg/metrics"
)

// cookieNamePrefix scopes one attribution cookie per tenant site, so a visitor
// tracked across several funnel sites keeps independent records.
const cookieNamePrefix = "bowlnow_attribution_"

// CookieName returns the attribution cookie name for a site.
func CookieName(siteID string) string {
	return cookieNamePrefix + siteID
}

// CookieStore implements domain.RecordStore over the request/response cookie
// jar. The value format is URL-encoded JSON; expiry is a rolling window
// refreshed on every save. A store built without a request or writer behaves
// like a missing cookie jar: loads return nil and writes are no-ops, so the
// engine stays safe to call from contexts that have no HTTP exchange.
type CookieStore struct {
	request *http.Request
	writer  http.ResponseWriter
	maxAge  time.Duration
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewCookieStore creates a record store bound to one HTTP exchange.
func NewCookieStore(w http.ResponseWriter, r *http.Request, maxAge time.Duration, log *logger.Logger, m *metrics.Metrics) *CookieStore {
	return &CookieStore{
		request: r,
		writer:  w,
		maxAge:  maxAge,
		now:     time.Now,
		logger:  log,
		metrics: m,
	}
}

// Load reads and decodes the attribution cookie for a site. Missing cookies
// and decode failures both yield nil; failures are counted and logged, never
// propagated.
func (s *CookieStore) Load(siteID string) *domain.Record {
	if s.request == nil {
		return nil
	}

	cookie, err := s.request.Cookie(CookieName(siteID))
	if err != nil {
		return nil
	}

	decoded, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		s.metrics.RecordCookieFailure("url_decode")
		s.logger.WithError(err).WithField("site_id", siteID).Warn("Failed to decode attribution cookie")
		return nil
	}

	var record domain.Record
	if err := json.Unmarshal([]byte(decoded), &record); err != nil {
		s.metrics.RecordCookieFailure("json_parse")
		s.logger.WithError(err).WithField("site_id", siteID).Warn("Failed to parse attribution cookie")
		return nil
	}

	return &record
}

// Save serializes the record and sets the cookie with a fresh expiry.
func (s *CookieStore) Save(siteID string, record domain.Record) {
	if s.writer == nil {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		s.metrics.RecordCookieFailure("json_marshal")
		s.logger.WithError(err).WithField("site_id", siteID).Warn("Failed to serialize attribution record")
		return
	}

	http.SetCookie(s.writer, &http.Cookie{
		Name:     CookieName(siteID),
		Value:    url.QueryEscape(string(payload)),
		Path:     "/",
		Expires:  s.now().Add(s.maxAge).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the attribution cookie for a site.
func (s *CookieStore) Clear(siteID string) {
	if s.writer == nil {
		return
	}

	http.SetCookie(s.writer, &http.Cookie{
		Name:     CookieName(siteID),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}
