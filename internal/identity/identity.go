// Package identity makes national IDs non-reversible for storage and lookup
// while keeping names confidential but recoverable for redaction and fraud
// reporting.
package identity

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ballotbox/internal/identity/secrets"
)

// NameEncryptionKeySecret is the registry entry holding the AES-256 key for
// name encryption. Generated once per deployment; losing it makes every
// previously encrypted name permanently unrecoverable.
const NameEncryptionKeySecret = "NAME_ENCRYPTION_KEY_AES_GCM"

const keyBytes = 32

// Typed failures for the decryption path. Callers must branch on these; the
// engine never degrades an integrity failure into a domain outcome.
var (
	// ErrKeyUnavailable means no encryption key has ever been established.
	ErrKeyUnavailable = errors.New("name encryption key unavailable")
	// ErrIntegrity means the envelope failed authentication (tampering or corruption).
	ErrIntegrity = errors.New("name ciphertext failed integrity check")
)

// Normalize strips separators and whitespace from a national ID so that
// "111-11-1111" and "111111111" refer to the same voter.
func Normalize(nationalID string) string {
	s := strings.ReplaceAll(nationalID, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimSpace(s)
}

// Obfuscate derives the one-way digest of a national ID used as the durable
// lookup key. Deterministic: equal normalized inputs always produce equal
// digests. The raw ID is never reconstructable from the digest.
func Obfuscate(nationalID string) string {
	sum := sha256.Sum256([]byte(Normalize(nationalID)))
	return hex.EncodeToString(sum[:])
}

// envelope is the stored form of an encrypted name. All fields are required
// for decryption.
type envelope struct {
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

// Protector encrypts and decrypts voter names with AES-256-GCM, keyed by a
// secret lazily generated on first use and persisted in the secret registry.
type Protector struct {
	registry secrets.Registry

	// genMu serializes lazy key generation so two concurrent first
	// encryptions cannot each persist a different key.
	genMu sync.Mutex
}

// NewProtector builds a Protector over the given secret registry.
func NewProtector(registry secrets.Registry) *Protector {
	return &Protector{registry: registry}
}

// EncryptName encrypts a name non-deterministically: a fresh nonce per call
// means two encryptions of the same name yield different envelopes, so equal
// names cannot be correlated by ciphertext equality.
func (p *Protector) EncryptName(ctx context.Context, name string) (string, error) {
	key, err := p.loadOrCreateKey(ctx)
	if err != nil {
		return "", err
	}

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(name), nil)
	// Seal appends the tag to the ciphertext; keep them as separate envelope
	// fields so the stored format is explicit about what decryption needs.
	tagStart := len(sealed) - aead.Overhead()

	env := envelope{
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:tagStart]),
		Tag:        base64.StdEncoding.EncodeToString(sealed[tagStart:]),
	}
	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return string(out), nil
}

// DecryptName is the inverse of EncryptName. It fails with ErrKeyUnavailable
// if no encryption key has ever been established and ErrIntegrity if the
// envelope is malformed or its tag does not verify.
func (p *Protector) DecryptName(ctx context.Context, encryptedName string) (string, error) {
	key, ok, err := p.registry.GetSecretBytes(ctx, NameEncryptionKeySecret)
	if err != nil {
		return "", fmt.Errorf("load name encryption key: %w", err)
	}
	if !ok {
		return "", ErrKeyUnavailable
	}

	var env envelope
	if err := json.Unmarshal([]byte(encryptedName), &env); err != nil {
		return "", fmt.Errorf("%w: malformed envelope", ErrIntegrity)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return "", fmt.Errorf("%w: malformed nonce", ErrIntegrity)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: malformed ciphertext", ErrIntegrity)
	}
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	if err != nil {
		return "", fmt.Errorf("%w: malformed tag", ErrIntegrity)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	if len(nonce) != aead.NonceSize() {
		return "", fmt.Errorf("%w: bad nonce length", ErrIntegrity)
	}

	plaintext, err := aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrIntegrity
	}
	return string(plaintext), nil
}

func (p *Protector) loadOrCreateKey(ctx context.Context) ([]byte, error) {
	key, ok, err := p.registry.GetSecretBytes(ctx, NameEncryptionKeySecret)
	if err != nil {
		return nil, fmt.Errorf("load name encryption key: %w", err)
	}
	if ok {
		return key, nil
	}

	p.genMu.Lock()
	defer p.genMu.Unlock()

	// Re-check under the lock: another goroutine may have generated the key.
	key, ok, err = p.registry.GetSecretBytes(ctx, NameEncryptionKeySecret)
	if err != nil {
		return nil, fmt.Errorf("load name encryption key: %w", err)
	}
	if ok {
		return key, nil
	}

	key = make([]byte, keyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate name encryption key: %w", err)
	}
	if err := p.registry.SetSecretBytes(ctx, NameEncryptionKeySecret, key); err != nil {
		return nil, fmt.Errorf("persist name encryption key: %w", err)
	}
	return key, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init GCM: %w", err)
	}
	return aead, nil
}
