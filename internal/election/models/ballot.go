package models

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"ballotbox/internal/identity"
)

// Ballot is one voting instrument as submitted for counting. "Issued" is a
// derived state: no issued-ballot record exists anywhere; the ballot number
// itself carries the proof of issuance. A Ballot row is persisted exactly
// once, at counting time, with the comment already redacted.
type Ballot struct {
	BallotNumber      string
	ChosenCandidateID int64
	// VoterComments is the free-text comment; empty means none was given.
	VoterComments string
}

// BallotStatus is the outcome of a count attempt, not a persisted entity
// state. The five outcomes are mutually exclusive and exhaustive.
type BallotStatus string

const (
	BallotStatusVoterNotRegistered  BallotStatus = "voter_not_registered"
	BallotStatusFraudCommitted      BallotStatus = "fraud_committed"
	BallotStatusVoterBallotMismatch BallotStatus = "voter_ballot_mismatch"
	BallotStatusInvalidBallot       BallotStatus = "invalid_ballot"
	BallotStatusBallotCounted       BallotStatus = "ballot_counted"
)

// GenerateBallotNumber derives an opaque ballot number cryptographically
// bound to the voter's national ID: a salted keyed hash with the salt
// embedded in the output, so verification needs no stored issuance table.
//
// Each call uses a fresh salt, so the same voter can hold multiple distinct
// ballot numbers that all verify against them. Issuance is deliberately
// non-exclusive; counting is where exclusivity is enforced.
func GenerateBallotNumber(nationalID string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(identity.Normalize(nationalID)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("derive ballot number: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(hash), nil
}

// VerifyBinding reports whether ballotNumber was issued for nationalID. This
// is the sole authority for ballot/voter ownership. The underlying bcrypt
// comparison is constant time with respect to the digest, so ballot numbers
// circulating outside the trust boundary leak nothing through timing.
func VerifyBinding(nationalID, ballotNumber string) bool {
	hash, err := base64.RawURLEncoding.DecodeString(ballotNumber)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(identity.Normalize(nationalID))) == nil
}
