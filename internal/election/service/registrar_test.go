package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"ballotbox/internal/election/models"
	"ballotbox/internal/election/store/memory"
	"ballotbox/internal/identity"
	"ballotbox/internal/identity/secrets"
	"ballotbox/internal/redact"
	dErrors "ballotbox/pkg/domain-errors"
)

type RegistrarSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.InMemory
	registrar *Registrar
	engine    *Engine
}

func TestRegistrarSuite(t *testing.T) {
	suite.Run(t, new(RegistrarSuite))
}

func (s *RegistrarSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	protector := identity.NewProtector(secrets.NewInMemory())
	s.registrar = NewRegistrar(s.store, protector)
	s.engine = NewEngine(s.store, protector, redact.New(protector))
}

func (s *RegistrarSuite) TestRegisterVoter() {
	s.Run("valid registration", func() {
		err := s.registrar.RegisterVoter(s.ctx, "111-11-1111", "Adam", "Smith")
		s.Require().NoError(err)

		status, err := s.registrar.VoterStatus(s.ctx, "111-11-1111")
		s.Require().NoError(err)
		s.Equal(models.VoterStatusRegisteredNotVoted, status)
	})

	s.Run("separator variants are the same voter", func() {
		err := s.registrar.RegisterVoter(s.ctx, "111111111", "Adam", "Smith")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		err = s.registrar.RegisterVoter(s.ctx, "111 11 1111", "Adam", "Smith")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("missing fields are rejected", func() {
		err := s.registrar.RegisterVoter(s.ctx, "", "Adam", "Smith")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		err = s.registrar.RegisterVoter(s.ctx, "222-22-2222", "", "Smith")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		err = s.registrar.RegisterVoter(s.ctx, "222-22-2222", "Adam", "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("names are stored encrypted", func() {
		voter, err := s.store.GetVoterByObfuscatedID(s.ctx, identity.Obfuscate("111-11-1111"))
		s.Require().NoError(err)
		s.NotContains(voter.EncryptedFirstName, "Adam")
		s.NotContains(voter.EncryptedLastName, "Smith")
		s.NotEqual(voter.EncryptedFirstName, voter.EncryptedLastName)
	})
}

func (s *RegistrarSuite) TestVoterStatusUnknownVoter() {
	status, err := s.registrar.VoterStatus(s.ctx, "999-99-9999")
	s.Require().NoError(err)
	s.Equal(models.VoterStatusNotRegistered, status)
}

func (s *RegistrarSuite) TestDeregisterVoter() {
	s.Run("unknown voter", func() {
		err := s.registrar.DeregisterVoter(s.ctx, "999-99-9999", "admin-1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("registered voter is removed", func() {
		s.Require().NoError(s.registrar.RegisterVoter(s.ctx, "111-11-1111", "Adam", "Smith"))
		s.Require().NoError(s.registrar.DeregisterVoter(s.ctx, "111-11-1111", "admin-1"))

		status, err := s.registrar.VoterStatus(s.ctx, "111-11-1111")
		s.Require().NoError(err)
		s.Equal(models.VoterStatusNotRegistered, status)
	})

	s.Run("fraud records cannot be removed", func() {
		s.Require().NoError(s.registrar.RegisterVoter(s.ctx, "222-22-2222", "Thien", "Huynh"))
		candidate, err := s.registrar.RegisterCandidate(s.ctx, "Rose Hervey")
		s.Require().NoError(err)

		for range 2 {
			ballotNumber, err := s.engine.IssueBallot(s.ctx, "222-22-2222")
			s.Require().NoError(err)
			_, err = s.engine.CountBallot(s.ctx, "222-22-2222", ballotNumber, candidate.ID, "")
			s.Require().NoError(err)
		}

		status, err := s.registrar.VoterStatus(s.ctx, "222-22-2222")
		s.Require().NoError(err)
		s.Require().Equal(models.VoterStatusFraudCommitted, status)

		err = s.registrar.DeregisterVoter(s.ctx, "222-22-2222", "admin-1")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *RegistrarSuite) TestCandidates() {
	s.Run("empty name is rejected", func() {
		_, err := s.registrar.RegisterCandidate(s.ctx, "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("registration assigns ids in order", func() {
		first, err := s.registrar.RegisterCandidate(s.ctx, "Rose Hervey")
		s.Require().NoError(err)
		second, err := s.registrar.RegisterCandidate(s.ctx, " Yeong Qi ")
		s.Require().NoError(err)

		s.Less(first.ID, second.ID)
		s.Equal("Yeong Qi", second.Name, "names are trimmed")

		registered, err := s.registrar.CandidateIsRegistered(s.ctx, first.ID)
		s.Require().NoError(err)
		s.True(registered)

		registered, err = s.registrar.CandidateIsRegistered(s.ctx, 999)
		s.Require().NoError(err)
		s.False(registered)
	})

	s.Run("listing preserves registration order", func() {
		all, err := s.registrar.AllCandidates(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 2)
		s.Equal("Rose Hervey", all[0].Name)
		s.Equal("Yeong Qi", all[1].Name)
	})
}
