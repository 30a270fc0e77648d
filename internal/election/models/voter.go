package models

// Voter is the stored representation of one registrant. Only minimized data
// leaves the registration request scope: names are encrypted envelopes and
// the national ID exists only as its one-way digest.
//
// Invariants:
//   - ObfuscatedNationalID is unique across the store
//   - Voted flips true exactly once, when a ballot is counted
//   - FraudCommitted is monotonic: once true it is never reset, and a
//     fraudulent voter can never be deleted
type Voter struct {
	ObfuscatedNationalID string
	EncryptedFirstName   string
	EncryptedLastName    string
	Voted                bool
	FraudCommitted       bool
}

// VoterStatus describes a voter's position in the lifecycle. Exactly one
// status holds at any time.
type VoterStatus string

const (
	VoterStatusNotRegistered      VoterStatus = "not_registered"
	VoterStatusRegisteredNotVoted VoterStatus = "registered_not_voted"
	VoterStatusBallotCounted      VoterStatus = "ballot_counted"
	VoterStatusFraudCommitted     VoterStatus = "fraud_committed"
)

// Status derives the lifecycle status from the stored flags. Fraud dominates:
// a voter who voted and then attempted to vote again reports
// VoterStatusFraudCommitted, not VoterStatusBallotCounted.
func (v *Voter) Status() VoterStatus {
	switch {
	case v == nil:
		return VoterStatusNotRegistered
	case v.FraudCommitted:
		return VoterStatusFraudCommitted
	case v.Voted:
		return VoterStatusBallotCounted
	default:
		return VoterStatusRegisteredNotVoted
	}
}
