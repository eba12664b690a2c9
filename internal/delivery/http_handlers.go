package delivery

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"attrgo/internal/domain"
	"attrgo/internal/infrastructure"
	"attrgo/internal/usecase"
	"attrgo/pkg/logger"
	"attrgo/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// visitorCookiePrefix names the per-site visitor ID cookie used to key the
// server-side record mirror. Independent from the attribution cookie so a
// mirror rollout never invalidates existing attribution state.
const visitorCookiePrefix = "bowlnow_visitor_"

// handles HTTP requests
type HTTPHandlers struct {
	attributionService *usecase.AttributionService
	leadService        *usecase.LeadService
	cookieMaxAge       time.Duration
	logger             *logger.Logger
	metrics            *metrics.Metrics
}

// creates new HTTP handlers
func NewHTTPHandlers(
	attributionService *usecase.AttributionService,
	leadService *usecase.LeadService,
	cookieMaxAge time.Duration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		attributionService: attributionService,
		leadService:        leadService,
		cookieMaxAge:       cookieMaxAge,
		logger:             logger,
		metrics:            metrics,
	}
}

type trackRequest struct {
	SiteID   string `json:"site_id" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Referrer string `json:"referrer"`
}

type conversionRequest struct {
	SiteID    string  `json:"site_id" binding:"required"`
	URL       string  `json:"url" binding:"required"`
	Referrer  string  `json:"referrer"`
	EventType string  `json:"event_type" binding:"required"`
	Value     float64 `json:"value"`
	Currency  string  `json:"currency"`
}

type formSubmitRequest struct {
	SiteID   string            `json:"site_id" binding:"required"`
	URL      string            `json:"url" binding:"required"`
	Referrer string            `json:"referrer"`
	Name     string            `json:"name" binding:"required"`
	Email    string            `json:"email" binding:"required,email"`
	Phone    string            `json:"phone"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields"`
}

// SubmitForm captures a lead with its attribution and forwards it to the CRM.
func (h *HTTPHandlers) SubmitForm(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req formSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/forms/submit", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	store := h.recordStore(c)
	view := h.pageView(c, req.SiteID, req.URL, req.Referrer)

	lead, err := h.leadService.Submit(ctx, store, view, usecase.FormSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
		Fields:  req.Fields,
	})
	if err != nil {
		h.metrics.RecordHTTPRequest("POST", "/forms/submit", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to capture lead")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to capture lead",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/forms/submit", "201", time.Since(start))

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Lead captured",
		"lead_id":     lead.ID,
		"attribution": lead.Attribution,
		"request_id":  requestID,
	})
}

// TrackPageview folds the current page view into the visitor's record and
// returns the projected payload.
func (h *HTTPHandlers) TrackPageview(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/tracking/pageview", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	store := h.recordStore(c)
	view := h.pageView(c, req.SiteID, req.URL, req.Referrer)

	payload := h.attributionService.Track(ctx, store, view)

	h.metrics.RecordHTTPRequest("POST", "/tracking/pageview", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"attribution": payload,
		"request_id":  requestID,
	})
}

// TrackConversion forwards a conversion event with current attribution.
func (h *HTTPHandlers) TrackConversion(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req conversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/tracking/conversion", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	store := h.recordStore(c)
	view := h.pageView(c, req.SiteID, req.URL, req.Referrer)

	conversion, err := h.leadService.TrackConversion(ctx, store, view, usecase.ConversionEvent{
		EventType: req.EventType,
		Value:     req.Value,
		Currency:  req.Currency,
	})
	if err != nil {
		h.metrics.RecordHTTPRequest("POST", "/tracking/conversion", "502", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to forward conversion")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":       "Conversion recorded but not forwarded",
			"message":     err.Error(),
			"attribution": conversion.Attribution,
			"request_id":  requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/tracking/conversion", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"message":     "Conversion tracked",
		"attribution": conversion.Attribution,
		"request_id":  requestID,
	})
}

// GetAttribution returns the projected payload for the current visitor. Like
// every read it is update-then-read: url/referrer query parameters describing
// the current page are merged in first.
func (h *HTTPHandlers) GetAttribution(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	siteID := c.Query("site_id")
	if siteID == "" {
		h.metrics.RecordHTTPRequest("GET", "/tracking/attribution", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Missing required parameter",
			"message":    "site_id parameter is required",
			"request_id": requestID,
		})
		return
	}

	store := h.recordStore(c)
	view := h.pageView(c, siteID, c.Query("url"), c.Query("referrer"))

	payload := h.attributionService.Track(ctx, store, view)

	h.metrics.RecordHTTPRequest("GET", "/tracking/attribution", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"attribution": payload,
		"request_id":  requestID,
	})
}

// ClearAttribution drops the visitor's attribution record for a site.
func (h *HTTPHandlers) ClearAttribution(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	siteID := c.Query("site_id")
	if siteID == "" {
		h.metrics.RecordHTTPRequest("DELETE", "/tracking/attribution", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Missing required parameter",
			"message":    "site_id parameter is required",
			"request_id": requestID,
		})
		return
	}

	h.attributionService.Clear(h.recordStore(c), siteID)

	h.metrics.RecordHTTPRequest("DELETE", "/tracking/attribution", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"message":    "Attribution cleared",
		"site_id":    siteID,
		"request_id": requestID,
	})
}

// GetLeads lists captured leads for the portal.
func (h *HTTPHandlers) GetLeads(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	filter, err := h.parseLeadFilter(c)
	if err != nil {
		h.metrics.RecordHTTPRequest("GET", "/leads", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid parameters",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	response, err := h.leadService.GetLeads(ctx, filter)
	if err != nil {
		h.metrics.RecordHTTPRequest("GET", "/leads", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to get leads")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to retrieve leads",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/leads", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"data":       response.Data,
		"total":      response.Total,
		"limit":      response.Limit,
		"offset":     response.Offset,
		"has_more":   response.HasMore,
		"request_id": requestID,
	})
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	apiInfo := gin.H{
		"api_version": "v1",
		"service":     "Attribution Service",
		"version":     "1.0.0",
		"description": "First-touch/last-touch marketing attribution for funnel sites",
		"endpoints": gin.H{
			"forms": gin.H{
				"submit": gin.H{
					"path":        "/api/v1/forms/submit",
					"methods":     []string{"POST"},
					"description": "Capture a lead with current attribution and forward to the CRM",
				},
			},
			"tracking": gin.H{
				"pageview": gin.H{
					"path":        "/api/v1/tracking/pageview",
					"methods":     []string{"POST"},
					"description": "Merge the current page view into the visitor's attribution record",
				},
				"conversion": gin.H{
					"path":        "/api/v1/tracking/conversion",
					"methods":     []string{"POST"},
					"description": "Forward a conversion event with current attribution",
				},
				"attribution": gin.H{
					"path":        "/api/v1/tracking/attribution",
					"methods":     []string{"GET", "DELETE"},
					"description": "Read (update-then-read) or clear the visitor's attribution payload",
				},
			},
			"leads": gin.H{
				"path":        "/api/v1/leads",
				"methods":     []string{"GET"},
				"description": "List captured leads",
				"parameters": gin.H{
					"site_id": "Optional: tenant site filter",
					"email":   "Optional: exact email filter",
					"from":    "Optional: start date (YYYY-MM-DD)",
					"to":      "Optional: end date (YYYY-MM-DD)",
					"limit":   "Optional: number of results (default: 100)",
					"offset":  "Optional: pagination offset (default: 0)",
				},
			},
		},
		"request_id": requestID,
	}

	h.metrics.RecordHTTPRequest("GET", "/api/v1", "200", time.Since(start))
	c.JSON(http.StatusOK, apiInfo)
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	health := gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "attrgo",
		"version":    "1.0.0",
		"request_id": requestID,
	}

	h.metrics.RecordHTTPRequest("GET", "/health", "200", time.Since(start))
	c.JSON(http.StatusOK, health)
}

// recordStore binds a cookie-backed record store to the current exchange.
func (h *HTTPHandlers) recordStore(c *gin.Context) domain.RecordStore {
	return infrastructure.NewCookieStore(c.Writer, c.Request, h.cookieMaxAge, h.logger, h.metrics)
}

// pageView assembles the page context for the current request, minting the
// per-site visitor ID cookie when absent.
func (h *HTTPHandlers) pageView(c *gin.Context, siteID, pageURL, referrer string) usecase.PageView {
	return usecase.PageView{
		SiteID:    siteID,
		URL:       pageURL,
		Referrer:  referrer,
		UserAgent: c.Request.UserAgent(),
		VisitorID: h.visitorID(c, siteID),
	}
}

func (h *HTTPHandlers) visitorID(c *gin.Context, siteID string) string {
	name := visitorCookiePrefix + siteID
	if cookie, err := c.Request.Cookie(name); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.New().String()
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(h.cookieMaxAge).UTC(),
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// parseLeadFilter parses common query parameters for the leads endpoint
func (h *HTTPHandlers) parseLeadFilter(c *gin.Context) (domain.LeadFilter, error) {
	filter := domain.LeadFilter{
		SiteID: c.Query("site_id"),
		Email:  c.Query("email"),
	}

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return domain.LeadFilter{}, err
		}
		filter.From = &from
	}

	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return domain.LeadFilter{}, err
		}
		filter.To = &to
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return domain.LeadFilter{}, err
		}
		filter.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return domain.LeadFilter{}, err
		}
		filter.Offset = offset
	}

	return filter, nil
}
