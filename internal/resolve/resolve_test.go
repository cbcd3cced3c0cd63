package resolve

import (
	"testing"

	"github.com/godilite/workforce-intel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePartners(t *testing.T) {
	util := []model.UtilizationRecord{
		{EngineerEmail: "a@x.com", PartnerName: "Acme"},
		{EngineerEmail: "b@x.com", PartnerName: "Acme"},
		{EngineerEmail: "b@x.com", PartnerName: "Beta"},
		{EngineerEmail: "c@x.com", PartnerName: ""},
	}
	csat := []model.CsatRecord{
		{Company: "ACME", Rating: "happy"},
		{Company: "acme", Rating: "sad"},
		{Company: "Gamma", Rating: "happy", ContactEmail: "joe@gamma.io"},
		{Company: "gamma", Rating: "neutral", ContactEmail: "ann@gamma.io"},
		{Company: "Delta", Rating: "happy", ContactEmail: "not-an-email"},
	}

	set := ResolvePartners(util, csat)

	assert.Equal(t, []string{"Acme", "Beta"}, set.Names)
	require.NotNil(t, set.Get("Acme"))
	assert.Len(t, set.Get("Acme").Rows, 2)
	assert.Len(t, set.Get("Acme").Csat, 2, "both spellings merge into Acme")
	assert.Empty(t, set.Get("Beta").Csat)
	assert.Nil(t, set.Get("acme"), "partner names are case-sensitive")

	require.Len(t, set.Unmatched, 2)
	assert.Equal(t, model.UnmatchedPartner{
		Company:            "Delta",
		TotalCsatResponses: 1,
		HappyRatings:       1,
		ContactDomains:     []string{},
	}, set.Unmatched[0])
	assert.Equal(t, model.UnmatchedPartner{
		Company:            "Gamma",
		TotalCsatResponses: 2,
		HappyRatings:       1,
		ContactDomains:     []string{"gamma.io"},
	}, set.Unmatched[1])
}

func TestResolvePartnersCaseVariantsShareCsat(t *testing.T) {
	util := []model.UtilizationRecord{
		{EngineerEmail: "a@x.com", PartnerName: "Acme"},
		{EngineerEmail: "a@x.com", PartnerName: "ACME"},
	}
	set := ResolvePartners(util, []model.CsatRecord{{Company: "acme"}})

	assert.Len(t, set.Get("Acme").Csat, 1)
	assert.Len(t, set.Get("ACME").Csat, 1)
	assert.Len(t, set.Matched, 1, "a shared row is recorded once")
	assert.Empty(t, set.Unmatched)
}

func TestResolveEngineers(t *testing.T) {
	util := []model.UtilizationRecord{
		{EngineerEmail: "a@x.com", EngineerName: "", ReportingManager: model.UnassignedManager},
		{EngineerEmail: "a@x.com", EngineerName: "Alice Smith", ReportingManager: "Dana"},
		{EngineerEmail: "a@x.com", EngineerName: "alice smith", ReportingManager: "Eve"},
		{EngineerEmail: "b@x.com", EngineerName: "Bob", ReportingManager: model.UnassignedManager},
	}

	set := ResolveEngineers(util)

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, set.Emails)
	a := set.Get("a@x.com")
	assert.Equal(t, "Alice Smith", a.Name)
	assert.Equal(t, "Dana", a.Manager)
	assert.Len(t, a.Rows, 3)
	assert.Equal(t, model.UnassignedManager, set.Get("b@x.com").Manager)
}
