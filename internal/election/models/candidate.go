package models

// Candidate is a registered election candidate. IDs are assigned by the
// store in registration order; the winner tie-break relies on that ordering.
type Candidate struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
