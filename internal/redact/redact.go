// Package redact strips personally identifying content from free-text ballot
// comments before anything is persisted.
//
// The guarantees are heuristic: known voter names and well-formed phone,
// email, and national-ID patterns are always removed; ambiguous or malformed
// patterns may pass through.
package redact

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ballotbox/internal/identity"
)

// Placeholder tokens, one per PII category.
const (
	RedactedName       = "[REDACTED NAME]"
	RedactedPhone      = "[REDACTED PHONE NUMBER]"
	RedactedEmail      = "[REDACTED EMAIL]"
	RedactedNationalID = "[REDACTED NATIONAL ID]"
)

var (
	// North-American-style phone numbers, optional parens and -/space separators.
	phonePattern = regexp.MustCompile(`\(?\b\d{3}\)?[-\s]?\d{3}[-\s]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`\b\S+@\S+\.\S+\b`)
	// National-ID-shaped digit groupings resembling ###-##-####.
	nationalIDPattern = regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`)
)

// Redactor removes voter names and PII patterns from free text. It decrypts
// the voter's stored names through the identity protector, so integrity
// failures on the name envelopes propagate as typed errors.
type Redactor struct {
	protector *identity.Protector
}

// New builds a Redactor over the given protector.
func New(protector *identity.Protector) *Redactor {
	return &Redactor{protector: protector}
}

// Redact removes the voter's first and last name, then phone numbers, email
// addresses, and national-ID-shaped sequences, in that order. Name
// substitution runs first because it depends on exact voter identity; the
// pattern passes then operate on the progressively redacted text.
func (r *Redactor) Redact(ctx context.Context, freeText, encryptedFirstName, encryptedLastName string) (string, error) {
	firstName, err := r.protector.DecryptName(ctx, encryptedFirstName)
	if err != nil {
		return "", fmt.Errorf("decrypt first name: %w", err)
	}
	lastName, err := r.protector.DecryptName(ctx, encryptedLastName)
	if err != nil {
		return "", fmt.Errorf("decrypt last name: %w", err)
	}

	return Apply(freeText, firstName, lastName), nil
}

// Apply performs the redaction passes over freeText given the voter's
// plaintext names. Exposed for callers that already hold the plaintext.
func Apply(freeText, firstName, lastName string) string {
	redacted := freeText
	if firstName != "" {
		redacted = strings.ReplaceAll(redacted, firstName, RedactedName)
	}
	if lastName != "" {
		redacted = strings.ReplaceAll(redacted, lastName, RedactedName)
	}

	redacted = phonePattern.ReplaceAllString(redacted, RedactedPhone)
	redacted = emailPattern.ReplaceAllString(redacted, RedactedEmail)
	redacted = nationalIDPattern.ReplaceAllString(redacted, RedactedNationalID)

	return redacted
}
