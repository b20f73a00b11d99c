package transform

import (
	"strings"
	"time"

	"github.com/twinlift/twinlift/internal/model"
)

// enrich adds derived fields to every entity. Enrichment is purely
// additive: values go into the Enrichment map only, and existing keys
// are never overwritten.
func enrich(result *model.ExtractionResult, now time.Time) int {
	stamp := now.UTC().Format(time.RFC3339)
	applied := 0

	for i := range result.Assets {
		a := &result.Assets[i]
		if a.Enrichment == nil {
			a.Enrichment = make(map[string]string)
		}
		applied += addIfAbsent(a.Enrichment, "normalized_id", normalizeID(a.ID))
		applied += addIfAbsent(a.Enrichment, "slug", slugify(a.ShortID))
		applied += addIfAbsent(a.Enrichment, "extracted_at", stamp)
	}
	for i := range result.Submodels {
		sm := &result.Submodels[i]
		if sm.Enrichment == nil {
			sm.Enrichment = make(map[string]string)
		}
		applied += addIfAbsent(sm.Enrichment, "normalized_id", normalizeID(sm.ID))
		applied += addIfAbsent(sm.Enrichment, "slug", slugify(sm.ShortID))
		applied += addIfAbsent(sm.Enrichment, "extracted_at", stamp)
	}
	return applied
}

func addIfAbsent(m map[string]string, key, value string) int {
	if _, exists := m[key]; exists || value == "" {
		return 0
	}
	m[key] = value
	return 1
}

// normalizeID lowercases a URI-like identifier and strips a trailing slash.
func normalizeID(id string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(id)), "/")
}

// slugify reduces a short id to a lowercase hyphenated token.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
