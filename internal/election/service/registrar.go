package service

import (
	"context"
	"errors"
	"strings"

	"ballotbox/internal/election/models"
	"ballotbox/internal/election/store"
	"ballotbox/internal/identity"
	dErrors "ballotbox/pkg/domain-errors"
	audit "ballotbox/pkg/platform/audit"
	"ballotbox/pkg/platform/sentinel"
)

// Registrar manages the voter and candidate registries. It is the only
// place where raw names enter the system; they are encrypted before the
// store sees them.
type Registrar struct {
	store     store.Store
	protector *identity.Protector

	*options
}

// NewRegistrar constructs a Registrar.
func NewRegistrar(s store.Store, protector *identity.Protector, opts ...Option) *Registrar {
	return &Registrar{
		store:     s,
		protector: protector,
		options:   applyOptions(opts),
	}
}

// RegisterVoter minimizes and stores a voter. Registering an already
// registered national ID is a conflict.
func (r *Registrar) RegisterVoter(ctx context.Context, nationalID, firstName, lastName string) error {
	if identity.Normalize(nationalID) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "national id is required")
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "first and last name are required")
	}

	encryptedFirst, err := r.protector.EncryptName(ctx, firstName)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to protect voter name")
	}
	encryptedLast, err := r.protector.EncryptName(ctx, lastName)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to protect voter name")
	}

	voter := &models.Voter{
		ObfuscatedNationalID: identity.Obfuscate(nationalID),
		EncryptedFirstName:   encryptedFirst,
		EncryptedLastName:    encryptedLast,
	}
	if err := r.store.AddVoter(ctx, voter); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "voter is already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register voter")
	}

	r.emitAudit(ctx, audit.EventVoterRegistered, voter.ObfuscatedNationalID, "", "")
	return nil
}

// VoterStatus reports the lifecycle state for a national ID. Unknown IDs
// report NOT_REGISTERED rather than an error.
func (r *Registrar) VoterStatus(ctx context.Context, nationalID string) (models.VoterStatus, error) {
	voter, err := r.store.GetVoterByObfuscatedID(ctx, identity.Obfuscate(nationalID))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter")
	}
	return voter.Status(), nil
}

// DeregisterVoter removes a voter from the registry. Fraud records are
// evidence and must outlive the voter's registration, so fraudulent voters
// cannot be removed.
func (r *Registrar) DeregisterVoter(ctx context.Context, nationalID string, actorID string) error {
	obfuscatedID := identity.Obfuscate(nationalID)

	voter, err := r.store.GetVoterByObfuscatedID(ctx, obfuscatedID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "voter is not registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter")
	}
	if voter.FraudCommitted {
		return dErrors.New(dErrors.CodeForbidden, "fraudulent voters cannot be deregistered")
	}

	if err := r.store.DeleteVoter(ctx, obfuscatedID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deregister voter")
	}

	r.emitAudit(ctx, audit.EventVoterDeregistered, obfuscatedID, "", actorID)
	return nil
}

// RegisterCandidate adds a candidate and returns it with its assigned ID.
func (r *Registrar) RegisterCandidate(ctx context.Context, name string) (*models.Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "candidate name is required")
	}

	candidate, err := r.store.AddCandidate(ctx, name)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register candidate")
	}

	r.emitAudit(ctx, audit.EventCandidateRegistered, candidate.Name, "", "")
	return candidate, nil
}

// CandidateIsRegistered reports whether a candidate ID is on the ballot.
func (r *Registrar) CandidateIsRegistered(ctx context.Context, candidateID int64) (bool, error) {
	if _, err := r.store.GetCandidate(ctx, candidateID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	return true, nil
}

// AllCandidates lists candidates in registration order.
func (r *Registrar) AllCandidates(ctx context.Context) ([]*models.Candidate, error) {
	candidates, err := r.store.AllCandidates(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	return candidates, nil
}
