package usecase

import (
	"net/url"
	"time"

	"attrgo/internal/domain"
)

// ExtractFromURL parses the current page URL for the recognized marketing
// parameters and returns a snapshot of them plus page context. It returns nil
// when the URL is empty or unparseable, and nil when no marketing parameter is
// present at all — a context-only snapshot is noise and must not reach the
// store. Pure function of its inputs; the caller supplies the clock.
func ExtractFromURL(currentURL, referrer, userAgent string, now time.Time) *domain.Snapshot {
	if currentURL == "" {
		return nil
	}

	parsed, err := url.Parse(currentURL)
	if err != nil {
		return nil
	}

	snapshot := domain.Snapshot{
		Referrer:  referrer,
		URL:       currentURL,
		UserAgent: userAgent,
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	query := parsed.Query()
	found := 0
	for _, binding := range domain.QueryParamBindings {
		if value := query.Get(binding.Param); value != "" {
			binding.Assign(&snapshot, value)
			found++
		}
	}

	if found == 0 {
		return nil
	}

	return &snapshot
}
