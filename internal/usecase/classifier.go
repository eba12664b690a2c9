package usecase

import (
	"strings"

	"attrgo/internal/domain"
)

// sourceRule pairs a predicate with the session source label it yields. Rules
// are evaluated strictly in order, so platform click IDs outrank whatever the
// utm_source string claims.
type sourceRule struct {
	label string
	match func(domain.Snapshot) bool
}

var clickIDRules = []sourceRule{
	{"Google Ads", func(s domain.Snapshot) bool { return s.GCLID != "" || s.GBRAID != "" || s.WBRAID != "" }},
	{"Facebook Ads", func(s domain.Snapshot) bool { return s.FBCLID != "" }},
	{"Microsoft Ads", func(s domain.Snapshot) bool { return s.MSCLIKID != "" }},
	{"TikTok Ads", func(s domain.Snapshot) bool { return s.TTCLID != "" }},
	{"Twitter Ads", func(s domain.Snapshot) bool { return s.TWCLID != "" }},
	{"LinkedIn Ads", func(s domain.Snapshot) bool { return s.LiFatID != "" }},
	{"DoubleClick", func(s domain.Snapshot) bool { return s.DCLID != "" }},
}

// utmSourceRule maps a substring of utm_source to a label.
type utmSourceRule struct {
	substring string
	label     string
}

var utmSourceRules = []utmSourceRule{
	{"google", "Google Ads"},
	{"facebook", "Facebook Ads"},
	{"meta", "Facebook Ads"},
	{"instagram", "Instagram"},
	{"youtube", "YouTube"},
	{"linkedin", "LinkedIn"},
	{"twitter", "Twitter"},
	{"tiktok", "TikTok"},
	{"email", "Email"},
	{"sms", "SMS"},
}

// ClassifySource derives the human-readable channel for a snapshot: click IDs
// first, then utm_source keyword matching, then "Referral" when only a
// referrer is known, and "Direct" otherwise.
func ClassifySource(snapshot domain.Snapshot) string {
	for _, rule := range clickIDRules {
		if rule.match(snapshot) {
			return rule.label
		}
	}

	if snapshot.UTMSource != "" {
		source := strings.ToLower(snapshot.UTMSource)
		for _, rule := range utmSourceRules {
			if strings.Contains(source, rule.substring) {
				return rule.label
			}
		}
		return "Organic"
	}

	if snapshot.Referrer != "" {
		return "Referral"
	}

	return "Direct"
}
