package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ballotbox/internal/election/models"
	"ballotbox/internal/election/store"
	"ballotbox/internal/identity"
	"ballotbox/internal/redact"
	dErrors "ballotbox/pkg/domain-errors"
	audit "ballotbox/pkg/platform/audit"
	"ballotbox/pkg/platform/keyedmutex"
	"ballotbox/pkg/platform/sentinel"
	pkgstrings "ballotbox/pkg/platform/strings"
)

const tracerName = "ballotbox/election"

// Engine runs the ballot lifecycle: issue, count, verify, invalidate, and
// the result aggregates.
//
// Counting is serialized per voter (keyed on the obfuscated national ID) so
// the already-voted check and the fraud mark form one atomic step, and per
// ballot number so counting cannot interleave with invalidation. Lock order
// is voter first, then ballot; InvalidateBallot takes only the ballot lock.
type Engine struct {
	store     store.Store
	protector *identity.Protector
	redactor  *redact.Redactor
	tracer    trace.Tracer

	voterLocks  *keyedmutex.KeyedMutex
	ballotLocks *keyedmutex.KeyedMutex

	*options
}

// NewEngine constructs the ballot lifecycle engine.
func NewEngine(s store.Store, protector *identity.Protector, redactor *redact.Redactor, opts ...Option) *Engine {
	return &Engine{
		store:       s,
		protector:   protector,
		redactor:    redactor,
		tracer:      otel.Tracer(tracerName),
		voterLocks:  keyedmutex.New(),
		ballotLocks: keyedmutex.New(),
		options:     applyOptions(opts),
	}
}

// IssueBallot derives a fresh ballot number for a registered voter. Only
// unregistered voters are refused; voters who already voted or committed
// fraud may still receive ballots, since exclusivity is enforced at
// counting time.
func (e *Engine) IssueBallot(ctx context.Context, nationalID string) (string, error) {
	ctx, span := e.tracer.Start(ctx, "IssueBallot")
	defer span.End()
	start := time.Now()

	obfuscatedID := identity.Obfuscate(nationalID)

	if _, err := e.store.GetVoterByObfuscatedID(ctx, obfuscatedID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "voter is not registered")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter")
	}

	ballotNumber, err := models.GenerateBallotNumber(nationalID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue ballot")
	}

	e.emitAudit(ctx, audit.EventBallotIssued, obfuscatedID, "", "")
	if e.metrics != nil {
		e.metrics.IncrementIssued()
		e.metrics.ObserveIssue(start)
	}
	return ballotNumber, nil
}

// VerifyBallot reports whether the ballot number was issued for the given
// national ID and has not been invalidated. It mirrors the binding and
// validity checks of counting without consuming anything.
func (e *Engine) VerifyBallot(ctx context.Context, nationalID, ballotNumber string) (bool, error) {
	if !models.VerifyBinding(nationalID, ballotNumber) {
		return false, nil
	}
	valid, err := e.store.IsBallotValid(ctx, ballotNumber)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check ballot validity")
	}
	return valid, nil
}

// CountBallot runs the counting decision sequence and returns the outcome.
// The checks run strictly in order; the first that fails names the result:
//
//  1. unknown voter             -> VOTER_NOT_REGISTERED
//  2. voter already voted       -> mark fraud, FRAUD_COMMITTED
//  3. ballot not bound to voter -> VOTER_BALLOT_MISMATCH
//  4. ballot invalidated        -> INVALID_BALLOT
//  5. otherwise                 -> persist, BALLOT_COUNTED
//
// A non-nil error means the attempt could not be adjudicated at all; the
// rejection outcomes above are returned with a nil error.
func (e *Engine) CountBallot(ctx context.Context, nationalID, ballotNumber string, candidateID int64, comment string) (models.BallotStatus, error) {
	ctx, span := e.tracer.Start(ctx, "CountBallot")
	defer span.End()
	start := time.Now()

	obfuscatedID := identity.Obfuscate(nationalID)

	e.voterLocks.Lock(obfuscatedID)
	defer e.voterLocks.Unlock(obfuscatedID)
	e.ballotLocks.Lock(ballotNumber)
	defer e.ballotLocks.Unlock(ballotNumber)

	status, err := e.adjudicate(ctx, nationalID, obfuscatedID, ballotNumber, candidateID, comment)
	if err != nil {
		return "", err
	}

	span.SetAttributes(attribute.String("outcome", string(status)))
	e.observeOutcome(ctx, status, obfuscatedID, start)
	return status, nil
}

func (e *Engine) adjudicate(ctx context.Context, nationalID, obfuscatedID, ballotNumber string, candidateID int64, comment string) (models.BallotStatus, error) {
	voter, err := e.store.GetVoterByObfuscatedID(ctx, obfuscatedID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.BallotStatusVoterNotRegistered, nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter")
	}

	if voter.Voted {
		// The repeat attempt itself is the fraud. Check and mark stay
		// under the voter lock so two racing attempts cannot both count.
		if err := e.store.SetVoterFraud(ctx, obfuscatedID); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark fraud")
		}
		return models.BallotStatusFraudCommitted, nil
	}

	if !models.VerifyBinding(nationalID, ballotNumber) {
		return models.BallotStatusVoterBallotMismatch, nil
	}

	valid, err := e.store.IsBallotValid(ctx, ballotNumber)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check ballot validity")
	}
	if !valid {
		return models.BallotStatusInvalidBallot, nil
	}

	if _, err := e.store.GetCandidate(ctx, candidateID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeBadRequest, "candidate is not registered")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}

	// Redact before anything durable sees the comment.
	redacted, err := e.redactor.Redact(ctx, comment, voter.EncryptedFirstName, voter.EncryptedLastName)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to redact comment")
	}

	ballot := &models.Ballot{
		BallotNumber:      ballotNumber,
		ChosenCandidateID: candidateID,
		VoterComments:     redacted,
	}
	if err := e.store.AddBallot(ctx, ballot, obfuscatedID); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist ballot")
	}
	return models.BallotStatusBallotCounted, nil
}

func (e *Engine) observeOutcome(ctx context.Context, status models.BallotStatus, obfuscatedID string, start time.Time) {
	switch status {
	case models.BallotStatusBallotCounted:
		e.emitAudit(ctx, audit.EventBallotCounted, obfuscatedID, "", "")
		if e.metrics != nil {
			e.metrics.IncrementCounted()
		}
	case models.BallotStatusFraudCommitted:
		e.emitAudit(ctx, audit.EventFraudDetected, obfuscatedID, string(status), "")
		if e.metrics != nil {
			e.metrics.IncrementFraud()
			e.metrics.IncrementRejected(string(status))
		}
	default:
		e.emitAudit(ctx, audit.EventBallotRejected, obfuscatedID, string(status), "")
		if e.metrics != nil {
			e.metrics.IncrementRejected(string(status))
		}
	}
	if e.metrics != nil {
		e.metrics.ObserveCount(start)
	}
}

// InvalidateBallot retires a ballot number. Returns true when the number is
// invalid afterwards, which includes numbers that were already invalid;
// counted ballots cannot be invalidated and return false. Holding the ballot
// lock keeps a concurrent CountBallot from slipping between the counted
// check and the mark.
func (e *Engine) InvalidateBallot(ctx context.Context, ballotNumber, actorID string) (bool, error) {
	e.ballotLocks.Lock(ballotNumber)
	defer e.ballotLocks.Unlock(ballotNumber)

	counted, err := e.store.IsBallotCounted(ctx, ballotNumber)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check ballot")
	}
	if counted {
		return false, nil
	}

	if err := e.store.MarkBallotInvalid(ctx, ballotNumber); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to invalidate ballot")
	}

	e.emitAudit(ctx, audit.EventBallotInvalidated, identity.Obfuscate(ballotNumber), "", actorID)
	if e.metrics != nil {
		e.metrics.IncrementInvalidated()
	}
	return true, nil
}

// BallotComments returns every non-empty redacted comment, deduplicated.
func (e *Engine) BallotComments(ctx context.Context) ([]string, error) {
	comments, err := e.store.NonEmptyComments(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load comments")
	}
	return pkgstrings.DedupeNonEmpty(comments), nil
}

// ComputeWinner returns the candidate with the most counted ballots. Ties
// break toward the lowest candidate ID.
func (e *Engine) ComputeWinner(ctx context.Context) (*models.Candidate, error) {
	winner, err := e.store.TopCandidateByVoteCount(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no ballots counted")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute winner")
	}
	return winner, nil
}

// FraudulentVoters lists the decrypted full names of voters marked for
// fraud, as a deduplicated set: two fraudulent voters who share a name
// collapse into one entry. Decryption failures abort the listing; a
// partially readable fraud report is worse than an explicit error.
func (e *Engine) FraudulentVoters(ctx context.Context) ([]string, error) {
	voters, err := e.store.FraudulentVoters(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fraudulent voters")
	}

	names := make([]string, len(voters))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, voter := range voters {
		group.Go(func() error {
			firstName, err := e.protector.DecryptName(groupCtx, voter.EncryptedFirstName)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to decrypt voter name")
			}
			lastName, err := e.protector.DecryptName(groupCtx, voter.EncryptedLastName)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to decrypt voter name")
			}
			names[i] = firstName + " " + lastName
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return pkgstrings.DedupeAndTrim(names), nil
}
