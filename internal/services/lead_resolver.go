package services

import (
	"context"
	"fmt"

	"leadflow/internal/models"
	"leadflow/internal/phone"
	"leadflow/internal/utils"
)

// LeadResolver finds the existing lead that already represents a contact.
// Matching is by locally-significant suffix, not by full number equality:
// country-code prefixing is heuristic, so two syntactically different
// canonical forms can still denote the same physical number.
type LeadResolver struct {
	api  models.LeadAPI
	norm phone.Normalizer
}

func NewLeadResolver(api models.LeadAPI, norm phone.Normalizer) *LeadResolver {
	return &LeadResolver{api: api, norm: norm}
}

// FindExisting returns the first lead whose stored phone shares the
// canonical identifier's suffix, or nil when none matches. Absence is not
// an error.
func (r *LeadResolver) FindExisting(ctx context.Context, canonical string) (*models.Lead, error) {
	leads, err := r.api.SearchLeads(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("error searching for existing lead: %w", err)
	}

	var match *models.Lead
	extras := 0
	for i := range leads {
		if r.norm.Same(leads[i].Phone, canonical) {
			if match == nil {
				match = &leads[i]
			} else {
				extras++
			}
		}
	}

	if extras > 0 {
		// Ambiguous duplicates: keep the first match in search order, but
		// leave a trace so data-entry duplicates can be cleaned up.
		utils.LogWarning("Found %d extra leads matching suffix %s; keeping lead %s", extras, r.norm.Suffix(canonical), match.ID)
	}

	return match, nil
}
