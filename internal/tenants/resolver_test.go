package tenants_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/internal/tenants"
)

var publicDomains = []string{"gmail.com", "outlook.com", "Yahoo.com"}

func TestPlanPersonalDomainNeverClaims(t *testing.T) {
	r := tenants.NewDomainResolver(publicDomains)

	plan := r.Plan("alice@gmail.com", "")
	require.Nil(t, plan.ClaimedDomain)
	require.Equal(t, "alice's space", plan.Name)

	plan = r.Plan("alice@gmail.com", "Alice Events")
	require.Nil(t, plan.ClaimedDomain)
	require.Equal(t, "Alice Events", plan.Name)
}

func TestPlanCorporateDomainClaims(t *testing.T) {
	r := tenants.NewDomainResolver(publicDomains)

	plan := r.Plan("alice@acme.io", "")
	require.NotNil(t, plan.ClaimedDomain)
	require.Equal(t, "acme.io", *plan.ClaimedDomain)
	require.Equal(t, "acme.io", plan.Name)

	plan = r.Plan("alice@acme.io", "Acme Inc")
	require.NotNil(t, plan.ClaimedDomain)
	require.Equal(t, "acme.io", *plan.ClaimedDomain)
	require.Equal(t, "Acme Inc", plan.Name)
}

func TestPlanNormalizesCase(t *testing.T) {
	r := tenants.NewDomainResolver(publicDomains)

	plan := r.Plan("Bob@YAHOO.com", "")
	require.Nil(t, plan.ClaimedDomain)

	plan = r.Plan("Bob@ACME.io", "")
	require.NotNil(t, plan.ClaimedDomain)
	require.Equal(t, "acme.io", *plan.ClaimedDomain)
}

func TestPlanMalformedEmail(t *testing.T) {
	r := tenants.NewDomainResolver(publicDomains)

	for _, email := range []string{"", "no-at-sign", "trailing@"} {
		plan := r.Plan(email, "")
		require.Nil(t, plan.ClaimedDomain, email)
		require.NotEmpty(t, plan.Name, email)
	}
}

func TestIsPublicDomain(t *testing.T) {
	r := tenants.NewDomainResolver(publicDomains)
	require.True(t, r.IsPublicDomain("gmail.com"))
	require.True(t, r.IsPublicDomain("yahoo.com"))
	require.True(t, r.IsPublicDomain("GMAIL.COM"))
	require.False(t, r.IsPublicDomain("acme.io"))
}
