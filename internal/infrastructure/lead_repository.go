package infrastructure

import (
	"context"
	"sort"
	"strings"
	"sync"

	"attrgo/internal/domain"
	"attrgo/pkg/logger"
)

// LeadRepository is an in-memory implementation of domain.LeadRepository.
// Leads are forwarded to the CRM on capture; this store only backs the portal
// query API, so process-lifetime retention is acceptable.
type LeadRepository struct {
	data   map[string][]domain.Lead
	mutex  sync.RWMutex
	logger *logger.Logger
}

// NewLeadRepository creates an empty lead repository.
func NewLeadRepository(log *logger.Logger) *LeadRepository {
	return &LeadRepository{
		data:   make(map[string][]domain.Lead),
		logger: log,
	}
}

func (r *LeadRepository) Store(ctx context.Context, lead domain.Lead) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.data[lead.SiteID] = append(r.data[lead.SiteID], lead)

	r.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"lead_id": lead.ID,
		"site_id": lead.SiteID,
		"email":   lead.Email,
	}).Debug("Stored lead")

	return nil
}

func (r *LeadRepository) GetByFilter(ctx context.Context, filter domain.LeadFilter) (*domain.LeadsResponse, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var candidates []domain.Lead
	if filter.SiteID != "" {
		candidates = r.data[filter.SiteID]
	} else {
		for _, leads := range r.data {
			candidates = append(candidates, leads...)
		}
	}

	var filtered []domain.Lead
	for _, lead := range candidates {
		if r.matchesFilter(lead, filter) {
			filtered = append(filtered, lead)
		}
	}

	// Newest first
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CapturedAt.After(filtered[j].CapturedAt)
	})

	limit := 100
	offset := 0

	if filter.Limit > 0 {
		limit = filter.Limit
	}
	if filter.Offset > 0 {
		offset = filter.Offset
	}

	total := len(filtered)
	start := offset
	end := offset + limit

	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	var page []domain.Lead
	if start < end {
		page = filtered[start:end]
	}

	r.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"total":    total,
		"returned": len(page),
		"site_id":  filter.SiteID,
	}).Debug("Lead query served")

	return &domain.LeadsResponse{
		Data:    page,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
	}, nil
}

func (r *LeadRepository) matchesFilter(lead domain.Lead, filter domain.LeadFilter) bool {
	if filter.Email != "" && !strings.EqualFold(lead.Email, filter.Email) {
		return false
	}
	if filter.From != nil && lead.CapturedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && lead.CapturedAt.After(*filter.To) {
		return false
	}

	return true
}
