//go:build integration

package secrets_test

import (
	"context"
	"crypto/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"ballotbox/internal/identity"
	"ballotbox/internal/identity/secrets"
	"ballotbox/pkg/testutil/containers"
)

type RedisRegistrySuite struct {
	suite.Suite
	ctx      context.Context
	redis    *containers.RedisContainer
	registry *secrets.RedisRegistry
}

func TestRedisRegistrySuite(t *testing.T) {
	suite.Run(t, new(RedisRegistrySuite))
}

func (s *RedisRegistrySuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.GetManager().GetRedis(s.T())
	s.registry = secrets.NewRedis(s.redis.Client)
}

func (s *RedisRegistrySuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisRegistrySuite) TestGetMissingSecret() {
	value, found, err := s.registry.GetSecretBytes(s.ctx, "nonexistent")
	s.Require().NoError(err)
	s.False(found)
	s.Nil(value)
}

func (s *RedisRegistrySuite) TestSetAndGetRoundTrip() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	s.Require().NoError(err)

	s.Require().NoError(s.registry.SetSecretBytes(s.ctx, "NAME_ENCRYPTION_KEY_AES_GCM", key))

	value, found, err := s.registry.GetSecretBytes(s.ctx, "NAME_ENCRYPTION_KEY_AES_GCM")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(key, value)
}

func (s *RedisRegistrySuite) TestOverwriteSecret() {
	s.Require().NoError(s.registry.SetSecretBytes(s.ctx, "rotating", []byte("v1")))
	s.Require().NoError(s.registry.SetSecretBytes(s.ctx, "rotating", []byte("v2")))

	value, found, err := s.registry.GetSecretBytes(s.ctx, "rotating")
	s.Require().NoError(err)
	s.True(found)
	s.Equal([]byte("v2"), value)
}

func (s *RedisRegistrySuite) TestBinaryValueSurvivesEncoding() {
	raw := []byte{0x00, 0xff, 0x10, 0x80, 0x7f, 0x00}
	s.Require().NoError(s.registry.SetSecretBytes(s.ctx, "binary", raw))

	value, found, err := s.registry.GetSecretBytes(s.ctx, "binary")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(raw, value)
}

// Two protectors sharing the registry must converge on one key so that a
// ciphertext written by either replica decrypts on the other.
func (s *RedisRegistrySuite) TestProtectorsShareEncryptionKey() {
	first := identity.NewProtector(s.registry)
	second := identity.NewProtector(s.registry)

	encrypted, err := first.EncryptName(s.ctx, "Adam")
	s.Require().NoError(err)

	decrypted, err := second.DecryptName(s.ctx, encrypted)
	s.Require().NoError(err)
	s.Equal("Adam", decrypted)
}

func (s *RedisRegistrySuite) TestConcurrentWritersAgree() {
	const writers = 16

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			protector := identity.NewProtector(s.registry)
			_, err := protector.EncryptName(s.ctx, "Linda")
			s.NoError(err)
		}()
	}
	wg.Wait()

	// Whichever writer won, exactly one key must be stored and usable.
	value, found, err := s.registry.GetSecretBytes(s.ctx, "NAME_ENCRYPTION_KEY_AES_GCM")
	s.Require().NoError(err)
	s.True(found)
	s.Len(value, 32)
}
