package sessions

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the minimum length of the session secret in bytes.
const MinSecretLength = 32

// codecVersion is prepended to every sealed payload and authenticated as additional data.
const codecVersion byte = 0x01

var hkdfInfo = []byte("storefront-dashboard.session.v1")

// Codec seals and opens cookie payloads with XChaCha20-Poly1305.
// The key is derived from the session secret with HKDF-SHA256.
type Codec struct {
	aead cipher.AEAD
	aad  []byte
}

// NewCodec binds sealed values to name, so a value cannot be replayed under another cookie.
func NewCodec(secret, name string) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.Newf(errors.ErrConfiguration, "session secret must be at least %d bytes", MinSecretLength)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("[sessions NewCodec] derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("[sessions NewCodec] cipher: %w", err)
	}
	return &Codec{aead: aead, aad: append([]byte{codecVersion}, name...)}, nil
}

func (c *Codec) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("[sessions Seal] nonce: %w", err)
	}
	blob := make([]byte, 0, 1+len(nonce)+len(plaintext)+c.aead.Overhead())
	blob = append(blob, codecVersion)
	blob = append(blob, nonce...)
	blob = c.aead.Seal(blob, nonce, plaintext, c.aad)
	return base64.RawURLEncoding.EncodeToString(blob), nil
}

func (c *Codec) Open(value string) ([]byte, error) {
	blob, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("[sessions Open] decode: %w", err)
	}
	ns := c.aead.NonceSize()
	if len(blob) < 1+ns+c.aead.Overhead() {
		return nil, fmt.Errorf("[sessions Open] payload too short")
	}
	if blob[0] != codecVersion {
		return nil, fmt.Errorf("[sessions Open] unknown version %d", blob[0])
	}
	plaintext, err := c.aead.Open(nil, blob[1:1+ns], blob[1+ns:], c.aad)
	if err != nil {
		return nil, fmt.Errorf("[sessions Open] authenticate: %w", err)
	}
	return plaintext, nil
}
