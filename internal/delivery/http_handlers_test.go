package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attrgo/internal/domain"
	"attrgo/internal/infrastructure"
	"attrgo/internal/usecase"
	"attrgo/pkg/logger"
	"attrgo/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One shared instance: promauto registers on the default registry and a
// second New() in the same test binary would panic.
var (
	testMetrics = metrics.New()
	testLogger  = logger.New("error")
)

type fakeCRM struct {
	leads       []domain.Lead
	conversions []domain.Conversion
	err         error
}

func (f *fakeCRM) SubmitLead(_ context.Context, lead domain.Lead) error {
	if f.err != nil {
		return f.err
	}
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeCRM) TrackConversion(_ context.Context, conversion domain.Conversion) error {
	if f.err != nil {
		return f.err
	}
	f.conversions = append(f.conversions, conversion)
	return nil
}

type testEnv struct {
	engine   http.Handler
	crm      *fakeCRM
	leadRepo *infrastructure.LeadRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	crm := &fakeCRM{}
	leadRepo := infrastructure.NewLeadRepository(testLogger)

	attributionService := usecase.NewAttributionService(nil, 30*24*time.Hour, testLogger, testMetrics)
	leadService := usecase.NewLeadService(leadRepo, crm, attributionService, testLogger, testMetrics)

	handlers := NewHTTPHandlers(attributionService, leadService, 30*24*time.Hour, testLogger, testMetrics)
	router := NewHTTPRouter(handlers, testLogger, testMetrics)

	return &testEnv{
		engine:   router.SetupRoutes(),
		crm:      crm,
		leadRepo: leadRepo,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}, cookies []*http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}

	return rec, decoded
}

func attributionOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()

	attribution, ok := body["attribution"].(map[string]interface{})
	require.True(t, ok, "response has no attribution object")
	return attribution
}

func sourceBlock(t *testing.T, attribution map[string]interface{}, key string) map[string]interface{} {
	t.Helper()

	block, ok := attribution[key].(map[string]interface{})
	require.True(t, ok, "attribution has no %s block", key)
	return block
}

func TestTrackPageview_NewVisitorViaGoogleAds(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "POST", "/api/v1/tracking/pageview", map[string]interface{}{
		"site_id": "site-1",
		"url":     "https://golf.example.com/?gclid=XYZ&utm_source=google&utm_medium=cpc",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	attribution := attributionOf(t, body)
	assert.Equal(t, float64(1), attribution["visitCount"])

	first := sourceBlock(t, attribution, "attributionSource")
	assert.Equal(t, "Google Ads", first["sessionSource"])
	assert.Equal(t, "XYZ", first["gclid"])
	assert.Equal(t, "cpc", first["utmMedium"])

	// Both the attribution record and the visitor ID cookie are set.
	names := make(map[string]bool)
	for _, cookie := range rec.Result().Cookies() {
		names[cookie.Name] = true
	}
	assert.True(t, names["bowlnow_attribution_site-1"])
	assert.True(t, names["bowlnow_visitor_site-1"])
}

func TestTrackPageview_ReturningVisitorSecondTouch(t *testing.T) {
	env := newTestEnv(t)

	firstRec, _ := env.do(t, "POST", "/api/v1/tracking/pageview", map[string]interface{}{
		"site_id": "site-1",
		"url":     "https://golf.example.com/?gclid=XYZ&utm_source=google",
	}, nil)
	require.Equal(t, http.StatusOK, firstRec.Code)

	rec, body := env.do(t, "POST", "/api/v1/tracking/pageview", map[string]interface{}{
		"site_id": "site-1",
		"url":     "https://golf.example.com/book?fbclid=ABC",
	}, firstRec.Result().Cookies())

	require.Equal(t, http.StatusOK, rec.Code)

	attribution := attributionOf(t, body)
	assert.Equal(t, float64(2), attribution["visitCount"])

	first := sourceBlock(t, attribution, "attributionSource")
	last := sourceBlock(t, attribution, "lastAttributionSource")
	assert.Equal(t, "Google Ads", first["sessionSource"])
	assert.Equal(t, "XYZ", first["gclid"])
	assert.Equal(t, "Facebook Ads", last["sessionSource"])
	assert.Equal(t, "ABC", last["fbclid"])
	assert.Nil(t, last["gclid"])
}

func TestTrackPageview_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, "POST", "/api/v1/tracking/pageview", map[string]interface{}{
		"url": "https://golf.example.com/",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, "POST", "/api/v1/tracking/pageview", map[string]interface{}{
		"site_id": "site-1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitForm_CapturesAndForwardsLead(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "POST", "/api/v1/forms/submit", map[string]interface{}{
		"site_id": "site-1",
		"url":     "https://golf.example.com/contact?utm_source=google&gclid=XYZ",
		"name":    "Pat Golfer",
		"email":   "pat@example.com",
		"phone":   "555-0100",
		"fields":  map[string]string{"preferred_time": "morning"},
	}, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, body["lead_id"])

	attribution := attributionOf(t, body)
	first := sourceBlock(t, attribution, "attributionSource")
	assert.Equal(t, "Google Ads", first["sessionSource"])

	require.Len(t, env.crm.leads, 1)
	forwarded := env.crm.leads[0]
	assert.Equal(t, "pat@example.com", forwarded.Email)
	assert.Equal(t, "Google Ads", forwarded.Attribution.AttributionSource.SessionSource)
	assert.Equal(t, "morning", forwarded.Fields["preferred_time"])

	stored, err := env.leadRepo.GetByFilter(context.Background(), domain.LeadFilter{SiteID: "site-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Total)
}

func TestSubmitForm_CRMFailureDoesNotLoseLead(t *testing.T) {
	env := newTestEnv(t)
	env.crm.err = errors.New("ghl unavailable")

	rec, _ := env.do(t, "POST", "/api/v1/forms/submit", map[string]interface{}{
		"site_id": "site-1",
		"url":     "https://golf.example.com/contact",
		"name":    "Pat Golfer",
		"email":   "pat@example.com",
	}, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)

	stored, err := env.leadRepo.GetByFilter(context.Background(), domain.LeadFilter{SiteID: "site-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Total)
}

func TestSubmitForm_RejectsInvalidEmail(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, "POST", "/api/v1/forms/submit", map[string]interface{}{
		"site_id": "site-1",
		"url":     "https://golf.example.com/contact",
		"name":    "Pat Golfer",
		"email":   "not-an-email",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.crm.leads)
}

func TestTrackConversion_ForwardsWithAttribution(t *testing.T) {
	env := newTestEnv(t)

	first, _ := env.do(t, "POST", "/api/v1/tracking/pageview", map[string]interface{}{
		"site_id": "site-1",
		"url":     "https://golf.example.com/?fbclid=ABC",
	}, nil)

	rec, _ := env.do(t, "POST", "/api/v1/tracking/conversion", map[string]interface{}{
		"site_id":    "site-1",
		"url":        "https://golf.example.com/thanks",
		"event_type": "booking",
		"value":      149.0,
		"currency":   "USD",
	}, first.Result().Cookies())

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.crm.conversions, 1)

	conversion := env.crm.conversions[0]
	assert.Equal(t, "booking", conversion.EventType)
	assert.Equal(t, 149.0, conversion.Value)
	assert.Equal(t, 2, conversion.Attribution.VisitCount)
	assert.Equal(t, "Facebook Ads", conversion.Attribution.AttributionSource.SessionSource)
}

func TestTrackConversion_CRMFailureReturnsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.crm.err = errors.New("ghl unavailable")

	rec, _ := env.do(t, "POST", "/api/v1/tracking/conversion", map[string]interface{}{
		"site_id":    "site-1",
		"url":        "https://golf.example.com/thanks",
		"event_type": "booking",
	}, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetAttribution_UpdateThenRead(t *testing.T) {
	env := newTestEnv(t)

	first, _ := env.do(t, "POST", "/api/v1/tracking/pageview", map[string]interface{}{
		"site_id": "site-1",
		"url":     "https://golf.example.com/?gclid=XYZ",
	}, nil)

	// The read itself merges the current page parameters and counts a visit.
	rec, body := env.do(t, "GET",
		"/api/v1/tracking/attribution?site_id=site-1&url=https%3A%2F%2Fgolf.example.com%2Fpricing",
		nil, first.Result().Cookies())

	require.Equal(t, http.StatusOK, rec.Code)

	attribution := attributionOf(t, body)
	assert.Equal(t, float64(2), attribution["visitCount"])
	assert.Equal(t, "Google Ads", sourceBlock(t, attribution, "attributionSource")["sessionSource"])

	rec, _ = env.do(t, "GET", "/api/v1/tracking/attribution", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearAttribution_ExpiresCookie(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, "DELETE", "/api/v1/tracking/attribution?site_id=site-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "bowlnow_attribution_site-1" {
			cleared = true
			assert.True(t, cookie.Expires.Before(time.Now()))
		}
	}
	assert.True(t, cleared)
}

func TestGetLeads_FiltersAndPaginates(t *testing.T) {
	env := newTestEnv(t)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		rec, _ := env.do(t, "POST", "/api/v1/forms/submit", map[string]interface{}{
			"site_id": "site-1",
			"url":     "https://golf.example.com/contact",
			"name":    "Lead",
			"email":   email,
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, body := env.do(t, "GET", "/api/v1/leads?site_id=site-1&limit=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, true, body["has_more"])
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 1)

	rec, _ = env.do(t, "GET", "/api/v1/leads?from=bad-date", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "GET", "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}
