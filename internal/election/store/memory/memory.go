// Package memory provides the in-memory persistence collaborator used in
// development and unit tests. Production deployments use the postgres store.
package memory

import (
	"context"
	"sort"
	"sync"

	"ballotbox/internal/election/models"
	"ballotbox/pkg/platform/sentinel"
)

// InMemory implements store.Store with maps behind a single RWMutex.
type InMemory struct {
	mu              sync.RWMutex
	voters          map[string]*models.Voter // keyed by obfuscated national ID
	candidates      map[int64]*models.Candidate
	nextCandidateID int64
	ballots         map[string]*models.Ballot // keyed by ballot number, counted only
	invalidBallots  map[string]struct{}
}

// New creates an empty in-memory store.
func New() *InMemory {
	return &InMemory{
		voters:          make(map[string]*models.Voter),
		candidates:      make(map[int64]*models.Candidate),
		nextCandidateID: 1,
		ballots:         make(map[string]*models.Ballot),
		invalidBallots:  make(map[string]struct{}),
	}
}

func (s *InMemory) AddVoter(_ context.Context, voter *models.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.voters[voter.ObfuscatedNationalID]; exists {
		return sentinel.ErrConflict
	}
	copied := *voter
	s.voters[voter.ObfuscatedNationalID] = &copied
	return nil
}

func (s *InMemory) GetVoterByObfuscatedID(_ context.Context, obfuscatedID string) (*models.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	voter, ok := s.voters[obfuscatedID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *voter
	return &copied, nil
}

func (s *InMemory) SetVoterFraud(_ context.Context, obfuscatedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	voter, ok := s.voters[obfuscatedID]
	if !ok {
		return sentinel.ErrNotFound
	}
	voter.FraudCommitted = true
	return nil
}

func (s *InMemory) DeleteVoter(_ context.Context, obfuscatedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.voters[obfuscatedID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.voters, obfuscatedID)
	return nil
}

func (s *InMemory) FraudulentVoters(_ context.Context) ([]*models.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Voter
	for _, voter := range s.voters {
		if voter.FraudCommitted {
			copied := *voter
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemory) AddCandidate(_ context.Context, name string) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := &models.Candidate{ID: s.nextCandidateID, Name: name}
	s.candidates[candidate.ID] = candidate
	s.nextCandidateID++

	copied := *candidate
	return &copied, nil
}

func (s *InMemory) GetCandidate(_ context.Context, candidateID int64) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidate, ok := s.candidates[candidateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *candidate
	return &copied, nil
}

func (s *InMemory) AllCandidates(_ context.Context) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Candidate, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		copied := *candidate
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) AddBallot(_ context.Context, ballot *models.Ballot, voterObfuscatedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	voter, ok := s.voters[voterObfuscatedID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if _, exists := s.ballots[ballot.BallotNumber]; exists {
		return sentinel.ErrAlreadyCounted
	}

	copied := *ballot
	s.ballots[ballot.BallotNumber] = &copied
	voter.Voted = true
	return nil
}

func (s *InMemory) IsBallotCounted(_ context.Context, ballotNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.ballots[ballotNumber]
	return exists, nil
}

func (s *InMemory) MarkBallotInvalid(_ context.Context, ballotNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidBallots[ballotNumber] = struct{}{}
	return nil
}

func (s *InMemory) IsBallotValid(_ context.Context, ballotNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, invalid := s.invalidBallots[ballotNumber]
	return !invalid, nil
}

func (s *InMemory) NonEmptyComments(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, ballot := range s.ballots {
		if ballot.VoterComments == "" {
			continue
		}
		if _, ok := seen[ballot.VoterComments]; ok {
			continue
		}
		seen[ballot.VoterComments] = struct{}{}
		out = append(out, ballot.VoterComments)
	}
	sort.Strings(out)
	return out, nil
}

func (s *InMemory) TopCandidateByVoteCount(_ context.Context) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	votes := make(map[int64]int)
	for _, ballot := range s.ballots {
		votes[ballot.ChosenCandidateID]++
	}
	if len(votes) == 0 {
		return nil, sentinel.ErrNotFound
	}

	var topID int64
	topVotes := -1
	for candidateID, count := range votes {
		// Ties break toward the lowest candidate ID.
		if count > topVotes || (count == topVotes && candidateID < topID) {
			topID = candidateID
			topVotes = count
		}
	}

	candidate, ok := s.candidates[topID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *candidate
	return &copied, nil
}
