// Package rules manages user-approved merchant-to-category mappings.
// These learned rules take precedence over the static keyword table during
// ingestion, so a correction made once in the preview sticks on the next
// statement upload.
package rules

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match types accepted on a MerchantRule.
const (
	MatchExact    = "exact"
	MatchContains = "contains"
)

// MerchantRule maps a merchant pattern to a category label.
type MerchantRule struct {
	ID        uuid.UUID `json:"id"`
	Pattern   string    `json:"pattern"`
	MatchType string    `json:"match_type"` // "exact" or "contains"
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists merchant rules per user.
type Store interface {
	ListMerchantRules(ctx context.Context, userID string) ([]MerchantRule, error)
	SaveMerchantRule(ctx context.Context, userID string, rule MerchantRule) error
}

// Service resolves descriptions against a user's learned rules.
type Service struct {
	store  Store
	logger *slog.Logger
	// maxDistance bounds the Levenshtein fallback that catches merchant
	// variations ("STARBUKS") the literal match types miss. Zero disables it.
	maxDistance int
}

// NewService creates a rules service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, maxDistance: 2}
}

// Save records a user-approved mapping.
func (s *Service) Save(ctx context.Context, userID string, rule MerchantRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.MatchType == "" {
		rule.MatchType = MatchContains
	}
	rule.Pattern = strings.TrimSpace(rule.Pattern)
	return s.store.SaveMerchantRule(ctx, userID, rule)
}

// MatchCategory returns the category of the first rule matching the
// description. Rules are tried literally first (exact, then contains); the
// fuzzy pass only runs when no literal rule hit. Lookup failures fail open:
// ingestion proceeds with keyword categorization.
func (s *Service) MatchCategory(ctx context.Context, userID, description string) (string, bool) {
	userRules, err := s.store.ListMerchantRules(ctx, userID)
	if err != nil {
		s.logger.Warn("merchant rule lookup failed", slog.Any("error", err))
		return "", false
	}
	if len(userRules) == 0 {
		return "", false
	}

	upper := strings.ToUpper(strings.TrimSpace(description))

	for _, r := range userRules {
		pattern := strings.ToUpper(r.Pattern)
		switch r.MatchType {
		case MatchExact:
			if upper == pattern {
				return r.Category, true
			}
		default:
			if strings.Contains(upper, pattern) {
				return r.Category, true
			}
		}
	}

	if s.maxDistance > 0 {
		tokens := strings.Fields(upper)
		for _, r := range userRules {
			pattern := strings.ToUpper(r.Pattern)
			for _, tok := range tokens {
				if fuzzy.LevenshteinDistance(pattern, tok) <= s.maxDistance {
					return r.Category, true
				}
			}
		}
	}

	return "", false
}
