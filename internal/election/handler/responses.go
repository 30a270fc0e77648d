package handler

import (
	"ballotbox/internal/election/models"
)

// IssueBallotResponse returns the freshly derived ballot number.
type IssueBallotResponse struct {
	BallotNumber string `json:"ballot_number"`
}

// CountBallotResponse names the outcome of a count attempt.
type CountBallotResponse struct {
	Status models.BallotStatus `json:"status"`
}

// VerifyBallotResponse reports ballot/voter binding.
type VerifyBallotResponse struct {
	Valid bool `json:"valid"`
}

// InvalidateBallotResponse confirms an invalidation.
type InvalidateBallotResponse struct {
	Invalidated bool `json:"invalidated"`
}

// VoterStatusResponse reports a voter's lifecycle state.
type VoterStatusResponse struct {
	Status models.VoterStatus `json:"status"`
}

// CandidatesResponse lists the ballot.
type CandidatesResponse struct {
	Candidates []*models.Candidate `json:"candidates"`
}

// WinnerResponse names the current leading candidate.
type WinnerResponse struct {
	Winner *models.Candidate `json:"winner"`
}

// CommentsResponse lists redacted ballot comments.
type CommentsResponse struct {
	Comments []string `json:"comments"`
}

// FraudResponse lists the decrypted full names of voters marked for fraud,
// deduplicated.
type FraudResponse struct {
	FraudulentVoters []string `json:"fraudulent_voters"`
}
