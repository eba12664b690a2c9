package usecase

import (
	"context"
	"fmt"
	"time"

	"attrgo/internal/domain"
	"attrgo/pkg/logger"
	"attrgo/pkg/metrics"

	"github.com/google/uuid"
)

// FormSubmission is the business half of a form submit; page context arrives
// separately as a PageView.
type FormSubmission struct {
	Name    string
	Email   string
	Phone   string
	Message string
	Fields  map[string]string
}

// ConversionEvent is a tracked conversion (purchase, booking, call click).
type ConversionEvent struct {
	EventType string
	Value     float64
	Currency  string
}

// LeadService captures leads and conversions, attaching the current
// attribution payload and forwarding both to the CRM.
type LeadService struct {
	leadRepo    domain.LeadRepository
	crm         domain.CRMClient
	attribution *AttributionService
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

// NewLeadService creates a new lead service.
func NewLeadService(
	leadRepo domain.LeadRepository,
	crm domain.CRMClient,
	attribution *AttributionService,
	log *logger.Logger,
	m *metrics.Metrics,
) *LeadService {
	return &LeadService{
		leadRepo:    leadRepo,
		crm:         crm,
		attribution: attribution,
		logger:      log,
		metrics:     m,
	}
}

// Submit runs update-then-read attribution for the submitting page, stores the
// lead and forwards it to the CRM. A CRM failure is logged but does not fail
// the submission: losing the forward degrades attribution downstream, losing
// the lead loses the customer.
func (s *LeadService) Submit(ctx context.Context, store domain.RecordStore, view PageView, form FormSubmission) (*domain.Lead, error) {
	log := s.logger.WithContext(ctx)

	payload := s.attribution.Track(ctx, store, view)

	lead := domain.Lead{
		ID:          uuid.New().String(),
		SiteID:      view.SiteID,
		Name:        form.Name,
		Email:       form.Email,
		Phone:       form.Phone,
		Message:     form.Message,
		Fields:      form.Fields,
		Attribution: payload,
		CapturedAt:  time.Now().UTC(),
	}

	if err := s.leadRepo.Store(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to store lead: %w", err)
	}

	s.metrics.RecordLeadCaptured(view.SiteID)

	if err := s.crm.SubmitLead(ctx, lead); err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"lead_id": lead.ID,
			"site_id": lead.SiteID,
		}).Error("Failed to forward lead to CRM")
	} else {
		log.WithFields(map[string]interface{}{
			"lead_id":        lead.ID,
			"site_id":        lead.SiteID,
			"session_source": payload.AttributionSource.SessionSource,
		}).Info("Lead captured and forwarded")
	}

	return &lead, nil
}

// TrackConversion runs update-then-read attribution and forwards the
// conversion event to the CRM.
func (s *LeadService) TrackConversion(ctx context.Context, store domain.RecordStore, view PageView, event ConversionEvent) (*domain.Conversion, error) {
	payload := s.attribution.Track(ctx, store, view)

	conversion := domain.Conversion{
		SiteID:      view.SiteID,
		EventType:   event.EventType,
		Value:       event.Value,
		Currency:    event.Currency,
		Attribution: payload,
		OccurredAt:  time.Now().UTC(),
	}

	s.metrics.RecordConversion(view.SiteID, event.EventType)

	if err := s.crm.TrackConversion(ctx, conversion); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]interface{}{
			"site_id":    view.SiteID,
			"event_type": event.EventType,
		}).Error("Failed to forward conversion to CRM")
		return &conversion, fmt.Errorf("failed to forward conversion: %w", err)
	}

	return &conversion, nil
}

// GetLeads queries captured leads for the portal API.
func (s *LeadService) GetLeads(ctx context.Context, filter domain.LeadFilter) (*domain.LeadsResponse, error) {
	response, err := s.leadRepo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get leads: %w", err)
	}

	return response, nil
}
