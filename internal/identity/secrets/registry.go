// Package secrets provides the process-wide registry for cryptographic
// secrets such as the name-encryption key.
//
// Secrets are created lazily on first use and must persist for the lifetime
// of the deployment. Losing the registry contents makes every previously
// encrypted name permanently unrecoverable; operators running the in-memory
// registry accept that any restart discards all encrypted names.
package secrets

import (
	"context"
	"sync"
)

//go:generate mockgen -source=registry.go -destination=mocks/mocks.go -package=mocks Registry

// Registry is the durable key/value store for secrets. Absence of a secret is
// an expected outcome and is reported through the ok return, not an error;
// the error return is reserved for infrastructure failures.
type Registry interface {
	GetSecretBytes(ctx context.Context, name string) (value []byte, ok bool, err error)
	SetSecretBytes(ctx context.Context, name string, value []byte) error
}

// InMemory is a process-local Registry for development and tests.
type InMemory struct {
	mu      sync.RWMutex
	secrets map[string][]byte
}

// NewInMemory creates an empty in-memory registry.
func NewInMemory() *InMemory {
	return &InMemory{secrets: make(map[string][]byte)}
}

func (r *InMemory) GetSecretBytes(_ context.Context, name string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.secrets[name]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (r *InMemory) SetSecretBytes(_ context.Context, name string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	r.secrets[name] = stored
	return nil
}
