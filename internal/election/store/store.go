// Package store defines the persistence collaborator for the election
// backend. The engine and registrar hold no state of their own; everything
// lives behind this interface.
package store

import (
	"context"

	"ballotbox/internal/election/models"
)

// Store is the contract consumed by the engine and registrar. Implementations
// return sentinel errors (pkg/platform/sentinel) for factual conditions:
// ErrNotFound for missing voters/candidates, ErrConflict for duplicate voter
// registration. Each method is individually atomic; cross-call atomicity for
// counting is provided by the engine's per-voter and per-ballot locks.
type Store interface {
	// AddVoter inserts a minimized voter. Returns sentinel.ErrConflict if a
	// voter with the same obfuscated national ID exists.
	AddVoter(ctx context.Context, voter *models.Voter) error
	// GetVoterByObfuscatedID returns sentinel.ErrNotFound for unknown IDs.
	GetVoterByObfuscatedID(ctx context.Context, obfuscatedID string) (*models.Voter, error)
	// SetVoterFraud irreversibly marks the voter as having committed fraud.
	SetVoterFraud(ctx context.Context, obfuscatedID string) error
	// DeleteVoter removes a voter row. The caller is responsible for the
	// fraud-preservation rule; the store deletes unconditionally.
	DeleteVoter(ctx context.Context, obfuscatedID string) error
	// FraudulentVoters lists every voter with the fraud flag set.
	FraudulentVoters(ctx context.Context) ([]*models.Voter, error)

	// AddCandidate registers a candidate and assigns the next candidate ID.
	AddCandidate(ctx context.Context, name string) (*models.Candidate, error)
	// GetCandidate returns sentinel.ErrNotFound for unknown candidate IDs.
	GetCandidate(ctx context.Context, candidateID int64) (*models.Candidate, error)
	AllCandidates(ctx context.Context) ([]*models.Candidate, error)

	// AddBallot persists a counted ballot and sets the voter's voted flag in
	// one atomic step. The comment must already be redacted.
	AddBallot(ctx context.Context, ballot *models.Ballot, voterObfuscatedID string) error
	// IsBallotCounted reports whether a counted row exists for the number.
	IsBallotCounted(ctx context.Context, ballotNumber string) (bool, error)
	// MarkBallotInvalid adds the number to the invalidated set. Idempotent:
	// marking an already-invalid number succeeds.
	MarkBallotInvalid(ctx context.Context, ballotNumber string) error
	// IsBallotValid reports whether the number is absent from the invalidated set.
	IsBallotValid(ctx context.Context, ballotNumber string) (bool, error)

	// NonEmptyComments returns every persisted non-empty comment, deduplicated.
	NonEmptyComments(ctx context.Context) ([]string, error)
	// TopCandidateByVoteCount returns the candidate with the most counted
	// ballots, ties broken by lowest candidate ID. Returns
	// sentinel.ErrNotFound when no ballots have been counted.
	TopCandidateByVoteCount(ctx context.Context) (*models.Candidate, error)
}
