package services

import (
	"context"
	"testing"

	"leadflow/internal/models"
	"leadflow/internal/phone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindExistingMatchesBySuffix(t *testing.T) {
	api := &fakeLeadAPI{leads: []models.Lead{
		{ID: "lead-1", Phone: "+1-202-555-0123"},
		{ID: "lead-2", Phone: "91 98765 43210"},
	}}
	resolver := NewLeadResolver(api, phone.NewNormalizer("91", 10))

	lead, err := resolver.FindExisting(context.Background(), "+919876543210")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "lead-2", lead.ID)
}

func TestFindExistingNoMatchIsNotAnError(t *testing.T) {
	api := &fakeLeadAPI{leads: []models.Lead{
		{ID: "lead-1", Phone: "+1-202-555-0123"},
	}}
	resolver := NewLeadResolver(api, phone.NewNormalizer("91", 10))

	lead, err := resolver.FindExisting(context.Background(), "+919876543210")
	require.NoError(t, err)
	assert.Nil(t, lead)
}

func TestFindExistingFirstMatchWinsOnAmbiguity(t *testing.T) {
	// Data-entry duplicates sharing one suffix.
	api := &fakeLeadAPI{leads: []models.Lead{
		{ID: "lead-1", Phone: "9876543210"},
		{ID: "lead-2", Phone: "+91-98765-43210"},
	}}
	resolver := NewLeadResolver(api, phone.NewNormalizer("91", 10))

	lead, err := resolver.FindExisting(context.Background(), "919876543210")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "lead-1", lead.ID)
}
