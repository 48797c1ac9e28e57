package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/codec"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// NonceSize is the standard GCM nonce length, the same 12 bytes browsers use
	// for WebCrypto AES-GCM.
	NonceSize = 12

	// TagSize is the GCM authentication tag appended to every ciphertext.
	TagSize = 16

	envelopeSeparator = "."
)

var (
	// ErrAuthenticationFailure means the tag did not verify: wrong key, corrupted
	// ciphertext, or tampering.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrMalformedEnvelope means the text could not be split into nonce and ciphertext.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrInvalidKey means the key is not KeySize bytes long.
	ErrInvalidKey = errors.New("key must be 32 bytes")
)

// Key is the detached symmetric key for a single note. It never leaves the client.
type Key []byte

// GenerateKey returns a fresh random 256-bit key.
func GenerateKey() (Key, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// ParseKey decodes a key from its share link fragment form.
func ParseKey(s string) (Key, error) {
	raw, err := codec.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != KeySize {
		return nil, ErrInvalidKey
	}
	return raw, nil
}

// String returns the fragment form of the key.
func (k Key) String() string {
	return codec.Encode(k)
}

// Envelope is the self-contained ciphertext of a note: the nonce and the GCM
// output (ciphertext with the tag appended). It is immutable once produced.
type Envelope struct {
	Nonce      []byte
	Ciphertext []byte
}

// String returns the transport form "<nonce>.<ciphertext>".
func (e *Envelope) String() string {
	return codec.Encode(e.Nonce) + envelopeSeparator + codec.Encode(e.Ciphertext)
}

// ParseEnvelope parses the transport form produced by Envelope.String.
func ParseEnvelope(s string) (*Envelope, error) {
	parts := strings.Split(s, envelopeSeparator)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected 2 fields, got %d", ErrMalformedEnvelope, len(parts))
	}

	nonce, err := codec.Decode(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrMalformedEnvelope, err)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", ErrMalformedEnvelope, NonceSize)
	}

	ciphertext, err := codec.Decode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %w", ErrMalformedEnvelope, err)
	}
	if len(ciphertext) < TagSize {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrMalformedEnvelope)
	}

	return &Envelope{Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Encrypt seals plaintext with AES-256-GCM under a fresh random nonce.
//
// If key is nil a new random key is generated. The envelope and the key are
// returned separately: the envelope goes to the server, the key only into the
// share link fragment.
func Encrypt(plaintext []byte, key Key) (*Envelope, Key, error) {
	if key == nil {
		var err error
		key, err = GenerateKey()
		if err != nil {
			return nil, nil, err
		}
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return &Envelope{
		Nonce:      nonce,
		Ciphertext: aesGCM.Seal(nil, nonce, plaintext, nil),
	}, key, nil
}

// Decrypt opens an envelope produced by Encrypt. Any tag mismatch is reported
// as ErrAuthenticationFailure; no partial plaintext is ever returned.
func Decrypt(env *Envelope, key Key) ([]byte, error) {
	if env == nil || len(env.Nonce) != NonceSize || len(env.Ciphertext) < TagSize {
		return nil, ErrMalformedEnvelope
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return plaintext, nil
}

func newGCM(key Key) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
