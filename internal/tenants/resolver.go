package tenants

import (
	"strings"
)

// ClaimPlan is the resolved outcome for a first-time sign-in: the tenant name
// to create and the domain to claim, if any.
type ClaimPlan struct {
	Name          string
	ClaimedDomain *string
}

// DomainResolver decides whether a first-time identity claims its email
// domain. Personal/webmail domains never claim; every other domain is treated
// as corporate and claimed exclusively.
type DomainResolver struct {
	publicDomains map[string]bool
}

// NewDomainResolver creates a domain-claim resolver from the configured
// public/personal domain set.
func NewDomainResolver(publicDomains []string) *DomainResolver {
	m := make(map[string]bool, len(publicDomains))
	for _, d := range publicDomains {
		m[strings.ToLower(strings.TrimSpace(d))] = true
	}
	return &DomainResolver{publicDomains: m}
}

// IsPublicDomain reports whether the domain belongs to the consumer webmail set.
func (r *DomainResolver) IsPublicDomain(domain string) bool {
	return r.publicDomains[strings.ToLower(domain)]
}

// Plan resolves the tenant name and domain claim for an identity's email.
// orgName, when given, overrides automatic naming. Personal accounts never
// claim a shared domain.
func (r *DomainResolver) Plan(email, orgName string) ClaimPlan {
	domain := emailDomain(email)
	name := strings.TrimSpace(orgName)

	if domain == "" || r.IsPublicDomain(domain) {
		if name == "" {
			name = localPart(email) + "'s space"
		}
		return ClaimPlan{Name: name}
	}

	if name == "" {
		name = domain
	}
	d := domain
	return ClaimPlan{Name: name, ClaimedDomain: &d}
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

func localPart(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "my"
	}
	return email[:at]
}
