package domain

import "strings"

// Member identifies an account in the upstream tracker's directory.
type Member struct {
	ID          int64
	DisplayName string
	Email       string
}

// EmailKey returns the normalized email used to key per-member aggregates.
func (m Member) EmailKey() string {
	return strings.ToLower(strings.TrimSpace(m.Email))
}

// EmailDomain extracts the lower-cased domain part of an email address.
// Returns "" when the address has no domain part.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
