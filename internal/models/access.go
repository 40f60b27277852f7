package models

import "strings"

// AccessStatus is the derived or persisted state of a visitor in the access workflow.
type AccessStatus string

const (
	// AccessStatusNeedsEntry is never persisted. It is what a session resolves
	// to when it has no email or the email has no roster record.
	AccessStatusNeedsEntry      AccessStatus = "needs_entry"
	AccessStatusPendingApproval AccessStatus = "pending_approval"
	AccessStatusApproved        AccessStatus = "approved"
	AccessStatusRevoked         AccessStatus = "revoked"
)

func (s AccessStatus) String() string {
	return string(s)
}

// IsPersistable reports whether a roster record may carry this status.
func (s AccessStatus) IsPersistable() bool {
	switch s {
	case AccessStatusPendingApproval, AccessStatusApproved, AccessStatusRevoked:
		return true
	default:
		return false
	}
}

// AccessRecord is one roster entry. The JSON shape is the persisted shape.
type AccessRecord struct {
	Email       string       `json:"email"`
	RequestedAt string       `json:"requestedAt"`
	Status      AccessStatus `json:"status"`
	LastSeen    string       `json:"lastSeen,omitempty"`
}

func (r *AccessRecord) IsApproved() bool {
	return r.Status == AccessStatusApproved
}

func (r *AccessRecord) IsPending() bool {
	return r.Status == AccessStatusPendingApproval
}

func (r *AccessRecord) IsRevoked() bool {
	return r.Status == AccessStatusRevoked
}

// NormalizeEmail is the canonical form used for roster keys and comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the part after the last '@', lower-cased, or "" when absent.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
