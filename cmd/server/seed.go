package main

import (
	"context"

	"ballotbox/internal/election/service"
	dErrors "ballotbox/pkg/domain-errors"
)

// seedDemoData loads a demo roster so local instances have candidates to vote
// for and voters to issue ballots to. Seeding is idempotent; conflicts from a
// previous run are skipped.
func seedDemoData(ctx context.Context, registrar *service.Registrar) error {
	existing, err := registrar.AllCandidates(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		candidates := []string{
			"Joseph Klimek",
			"Rose Hervey",
			"Yeong Qi",
			"Karthik Banerjee",
			"Courtney Yu",
			"Hugo Jennings",
			"Maia Kift",
			"Arnav Arora",
		}
		for _, name := range candidates {
			if _, err := registrar.RegisterCandidate(ctx, name); err != nil {
				return err
			}
		}
	}

	voters := []struct {
		nationalID string
		firstName  string
		lastName   string
	}{
		{"111111111", "Adam", "Smith"},
		{"222222222", "Thien", "Huynh"},
		{"333333333", "Neel", "Banerjee"},
		{"444444444", "Linda", "Qi"},
		{"555555555", "Shoujit", "Gande"},
	}
	for _, v := range voters {
		err := registrar.RegisterVoter(ctx, v.nationalID, v.firstName, v.lastName)
		if err != nil && !dErrors.HasCode(err, dErrors.CodeConflict) {
			return err
		}
	}
	return nil
}
