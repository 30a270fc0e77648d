package handler

// IssueBallotRequest asks for a ballot for a registered voter.
type IssueBallotRequest struct {
	NationalID string `json:"national_id"`
}

// CountBallotRequest submits a ballot for counting.
type CountBallotRequest struct {
	NationalID    string `json:"national_id"`
	BallotNumber  string `json:"ballot_number"`
	CandidateID   int64  `json:"chosen_candidate_id"`
	VoterComments string `json:"voter_comments"`
}

// InvalidateBallotRequest retires a ballot number before it is counted.
type InvalidateBallotRequest struct {
	BallotNumber string `json:"ballot_number"`
}

// RegisterVoterRequest enrolls a voter. Names are encrypted and the national
// ID obfuscated before anything is stored.
type RegisterVoterRequest struct {
	NationalID string `json:"national_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// DeregisterVoterRequest removes a voter from the registry.
type DeregisterVoterRequest struct {
	NationalID string `json:"national_id"`
}

// RegisterCandidateRequest puts a candidate on the ballot.
type RegisterCandidateRequest struct {
	Name string `json:"name"`
}
