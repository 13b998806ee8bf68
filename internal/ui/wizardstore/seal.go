package wizardstore

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var errSealedState = errors.New("wizard state cannot be opened")

// Sealer encrypts wizard state before it is written outside the process.
// The state holds the password typed on the first screen until the account is created.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the encryption key from secret. An empty secret gives a random key,
// so sealed state is only readable by this process.
func NewSealer(secret string) (*Sealer, error) {
	var s Sealer

	if secret == "" {
		if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
			return nil, fmt.Errorf("generating wizard state key: %w", err)
		}
		return &s, nil
	}

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("constella wizard state v1"))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("deriving wizard state key: %w", err)
	}
	return &s, nil
}

// Seal returns nonce || secretbox(plain)
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

func (s *Sealer) Open(box []byte) ([]byte, error) {
	if len(box) < nonceSize+secretbox.Overhead {
		return nil, errSealedState
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errSealedState
	}
	return plain, nil
}
