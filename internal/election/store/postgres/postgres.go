// Package postgres provides the PostgreSQL-backed persistence collaborator.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ballotbox/internal/election/models"
	"ballotbox/pkg/platform/sentinel"
	txcontext "ballotbox/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Store implements store.Store on top of PostgreSQL via database/sql.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed election store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the context transaction when one is present so callers can
// group store writes, and the pool otherwise.
func (s *Store) conn(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// EnsureSchema creates the election tables if they do not exist. The voters
// table holds only minimized identity material; raw national IDs and
// plaintext names never reach a column.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS voters (
			obfuscated_national_id TEXT PRIMARY KEY,
			encrypted_first_name   TEXT NOT NULL,
			encrypted_last_name    TEXT NOT NULL,
			voted                  BOOLEAN NOT NULL DEFAULT FALSE,
			fraud_committed        BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			id   BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ballots (
			ballot_number       TEXT PRIMARY KEY,
			chosen_candidate_id BIGINT NOT NULL REFERENCES candidates (id),
			voter_comments      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS invalid_ballots (
			ballot_number TEXT PRIMARY KEY
		)`,
	}
	for _, statement := range statements {
		if _, err := s.conn(ctx).ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) AddVoter(ctx context.Context, voter *models.Voter) error {
	if voter == nil {
		return fmt.Errorf("voter is required")
	}
	query := `
		INSERT INTO voters (obfuscated_national_id, encrypted_first_name, encrypted_last_name, voted, fraud_committed)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		voter.ObfuscatedNationalID,
		voter.EncryptedFirstName,
		voter.EncryptedLastName,
		voter.Voted,
		voter.FraudCommitted,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert voter: %w", err)
	}
	return nil
}

func (s *Store) GetVoterByObfuscatedID(ctx context.Context, obfuscatedID string) (*models.Voter, error) {
	query := `
		SELECT obfuscated_national_id, encrypted_first_name, encrypted_last_name, voted, fraud_committed
		FROM voters
		WHERE obfuscated_national_id = $1
	`
	voter := &models.Voter{}
	err := s.conn(ctx).QueryRowContext(ctx, query, obfuscatedID).Scan(
		&voter.ObfuscatedNationalID,
		&voter.EncryptedFirstName,
		&voter.EncryptedLastName,
		&voter.Voted,
		&voter.FraudCommitted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get voter: %w", err)
	}
	return voter, nil
}

func (s *Store) SetVoterFraud(ctx context.Context, obfuscatedID string) error {
	result, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE voters SET fraud_committed = TRUE WHERE obfuscated_national_id = $1`, obfuscatedID)
	if err != nil {
		return fmt.Errorf("set voter fraud: %w", err)
	}
	return requireRowAffected(result)
}

func (s *Store) DeleteVoter(ctx context.Context, obfuscatedID string) error {
	result, err := s.conn(ctx).ExecContext(ctx,
		`DELETE FROM voters WHERE obfuscated_national_id = $1`, obfuscatedID)
	if err != nil {
		return fmt.Errorf("delete voter: %w", err)
	}
	return requireRowAffected(result)
}

func (s *Store) FraudulentVoters(ctx context.Context) ([]*models.Voter, error) {
	query := `
		SELECT obfuscated_national_id, encrypted_first_name, encrypted_last_name, voted, fraud_committed
		FROM voters
		WHERE fraud_committed
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query fraudulent voters: %w", err)
	}
	defer rows.Close()

	var voters []*models.Voter
	for rows.Next() {
		voter := &models.Voter{}
		err := rows.Scan(
			&voter.ObfuscatedNationalID,
			&voter.EncryptedFirstName,
			&voter.EncryptedLastName,
			&voter.Voted,
			&voter.FraudCommitted,
		)
		if err != nil {
			return nil, fmt.Errorf("scan voter: %w", err)
		}
		voters = append(voters, voter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voters: %w", err)
	}
	return voters, nil
}

func (s *Store) AddCandidate(ctx context.Context, name string) (*models.Candidate, error) {
	candidate := &models.Candidate{Name: name}
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO candidates (name) VALUES ($1) RETURNING id`, name).Scan(&candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("insert candidate: %w", err)
	}
	return candidate, nil
}

func (s *Store) GetCandidate(ctx context.Context, candidateID int64) (*models.Candidate, error) {
	candidate := &models.Candidate{}
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, name FROM candidates WHERE id = $1`, candidateID).
		Scan(&candidate.ID, &candidate.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return candidate, nil
}

func (s *Store) AllCandidates(ctx context.Context) ([]*models.Candidate, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT id, name FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		candidate := &models.Candidate{}
		if err := rows.Scan(&candidate.ID, &candidate.Name); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return candidates, nil
}

// AddBallot inserts the counted ballot row and sets the voter's voted flag in
// a single transaction, so a crash between the two writes cannot leave a
// counted ballot with an unmarked voter. A transaction already present in the
// context is joined instead; its owner commits.
func (s *Store) AddBallot(ctx context.Context, ballot *models.Ballot, voterObfuscatedID string) error {
	if ballot == nil {
		return fmt.Errorf("ballot is required")
	}
	if tx, ok := txcontext.From(ctx); ok {
		return s.addBallot(ctx, tx, ballot, voterObfuscatedID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin count transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.addBallot(ctx, tx, ballot, voterObfuscatedID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit count transaction: %w", err)
	}
	return nil
}

func (s *Store) addBallot(ctx context.Context, tx *sql.Tx, ballot *models.Ballot, voterObfuscatedID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ballots (ballot_number, chosen_candidate_id, voter_comments) VALUES ($1, $2, $3)`,
		ballot.BallotNumber, ballot.ChosenCandidateID, ballot.VoterComments)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyCounted
		}
		return fmt.Errorf("insert ballot: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE voters SET voted = TRUE WHERE obfuscated_national_id = $1`, voterObfuscatedID)
	if err != nil {
		return fmt.Errorf("mark voter voted: %w", err)
	}
	return requireRowAffected(result)
}

func (s *Store) IsBallotCounted(ctx context.Context, ballotNumber string) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ballots WHERE ballot_number = $1)`, ballotNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ballot counted: %w", err)
	}
	return exists, nil
}

func (s *Store) MarkBallotInvalid(ctx context.Context, ballotNumber string) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO invalid_ballots (ballot_number) VALUES ($1) ON CONFLICT (ballot_number) DO NOTHING`,
		ballotNumber)
	if err != nil {
		return fmt.Errorf("mark ballot invalid: %w", err)
	}
	return nil
}

func (s *Store) IsBallotValid(ctx context.Context, ballotNumber string) (bool, error) {
	var invalid bool
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM invalid_ballots WHERE ballot_number = $1)`, ballotNumber).Scan(&invalid)
	if err != nil {
		return false, fmt.Errorf("check ballot valid: %w", err)
	}
	return !invalid, nil
}

func (s *Store) NonEmptyComments(ctx context.Context) ([]string, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT DISTINCT voter_comments FROM ballots WHERE voter_comments <> '' ORDER BY voter_comments`)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []string
	for rows.Next() {
		var comment string
		if err := rows.Scan(&comment); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func (s *Store) TopCandidateByVoteCount(ctx context.Context) (*models.Candidate, error) {
	query := `
		SELECT c.id, c.name
		FROM ballots b
		JOIN candidates c ON c.id = b.chosen_candidate_id
		GROUP BY c.id, c.name
		ORDER BY COUNT(*) DESC, c.id ASC
		LIMIT 1
	`
	candidate := &models.Candidate{}
	err := s.conn(ctx).QueryRowContext(ctx, query).Scan(&candidate.ID, &candidate.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query top candidate: %w", err)
	}
	return candidate, nil
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
