package access

import (
	"strings"

	"github.com/akeren/telecheck/internal/models"
)

// Policy holds the configurable parts of the access workflow.
type Policy struct {
	AdminEmail         string
	AdminCaseSensitive bool
	AllowedDomains     []string
	AutoApproveAllowed bool
}

// IsAdmin compares an email as the visitor typed it against the admin address.
func (p Policy) IsAdmin(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	if p.AdminCaseSensitive {
		return email == strings.TrimSpace(p.AdminEmail)
	}
	return strings.EqualFold(email, strings.TrimSpace(p.AdminEmail))
}

// ShadowsAdmin reports an address that differs from the admin address only by
// case while case-sensitive matching is on. Roster keys fold case, so such an
// address would otherwise land on the admin's record.
func (p Policy) ShadowsAdmin(email string) bool {
	if !p.AdminCaseSensitive || p.IsAdmin(email) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(p.AdminEmail))
}

// isAdminRecord identifies the admin's roster record. Roster emails are
// normalized, so this comparison is always case-insensitive.
func (p Policy) isAdminRecord(record *models.AccessRecord) bool {
	return models.NormalizeEmail(record.Email) == models.NormalizeEmail(p.AdminEmail)
}

// DomainAllowed is true when no allow-list is configured.
func (p Policy) DomainAllowed(email string) bool {
	if len(p.AllowedDomains) == 0 {
		return true
	}

	domain := models.EmailDomain(email)
	for _, allowed := range p.AllowedDomains {
		if strings.EqualFold(domain, strings.TrimPrefix(strings.TrimSpace(allowed), "@")) {
			return true
		}
	}
	return false
}

// InitialStatus is the status a first-time submit lands on.
func (p Policy) InitialStatus(email string) models.AccessStatus {
	if p.IsAdmin(email) {
		return models.AccessStatusApproved
	}
	if p.AutoApproveAllowed && len(p.AllowedDomains) > 0 && p.DomainAllowed(email) {
		return models.AccessStatusApproved
	}

	next, _ := NextStatus(models.AccessStatusNeedsEntry, ActionSubmit)
	return next
}
