package redact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"ballotbox/internal/identity"
	"ballotbox/internal/identity/secrets"
)

type RedactSuite struct {
	suite.Suite
	protector *identity.Protector
	ctx       context.Context
}

func TestRedactSuite(t *testing.T) {
	suite.Run(t, new(RedactSuite))
}

func (s *RedactSuite) SetupTest() {
	s.protector = identity.NewProtector(secrets.NewInMemory())
	s.ctx = context.Background()
}

func (s *RedactSuite) TestApply() {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "voter first name",
			in:   "vote for Adam",
			want: "vote for [REDACTED NAME]",
		},
		{
			name: "voter last name",
			in:   "Smith was here",
			want: "[REDACTED NAME] was here",
		},
		{
			name: "both names",
			in:   "Adam Smith says hi",
			want: "[REDACTED NAME] [REDACTED NAME] says hi",
		},
		{
			name: "phone with dashes",
			in:   "call me at 555-123-4567 ok",
			want: "call me at [REDACTED PHONE NUMBER] ok",
		},
		{
			name: "phone with parens",
			in:   "call (555) 123-4567",
			want: "call [REDACTED PHONE NUMBER]",
		},
		{
			name: "email",
			in:   "mail adam@example.com please",
			want: "mail [REDACTED EMAIL] please",
		},
		{
			name: "national id with dashes",
			in:   "my id is 111-11-1111",
			want: "my id is [REDACTED NATIONAL ID]",
		},
		{
			name: "national id with spaces",
			in:   "id 111 11 1111 here",
			want: "id [REDACTED NATIONAL ID] here",
		},
		{
			name: "bare nine digit id",
			in:   "id 111111111 here",
			want: "id [REDACTED NATIONAL ID] here",
		},
		{
			name: "all categories at once",
			in:   "Adam (555) 123-4567 adam@example.com 111-11-1111",
			want: "[REDACTED NAME] [REDACTED PHONE NUMBER] [REDACTED EMAIL] [REDACTED NATIONAL ID]",
		},
		{
			name: "clean text untouched",
			in:   "a perfectly ordinary comment",
			want: "a perfectly ordinary comment",
		},
		{
			name: "other names pass through",
			in:   "vote for Rose",
			want: "vote for Rose",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, Apply(tt.in, "Adam", "Smith"))
		})
	}
}

func (s *RedactSuite) TestApply_EmptyNamesSkipped() {
	// Empty names must not expand into placeholder spam.
	s.Equal("hello world", Apply("hello world", "", ""))
}

func (s *RedactSuite) TestRedact_DecryptsStoredNames() {
	encFirst, err := s.protector.EncryptName(s.ctx, "Adam")
	s.Require().NoError(err)
	encLast, err := s.protector.EncryptName(s.ctx, "Smith")
	s.Require().NoError(err)

	r := New(s.protector)
	out, err := r.Redact(s.ctx, "vote for Adam Smith at 555-123-4567", encFirst, encLast)
	s.Require().NoError(err)
	s.Equal("vote for [REDACTED NAME] [REDACTED NAME] at [REDACTED PHONE NUMBER]", out)
	s.NotContains(out, "Adam")
	s.NotContains(out, "Smith")
	s.NotContains(out, "555-123-4567")
}

func (s *RedactSuite) TestRedact_IntegrityFailurePropagates() {
	encLast, err := s.protector.EncryptName(s.ctx, "Smith")
	s.Require().NoError(err)

	r := New(s.protector)
	_, err = r.Redact(s.ctx, "anything", "garbage-envelope", encLast)
	s.Require().ErrorIs(err, identity.ErrIntegrity)
}
