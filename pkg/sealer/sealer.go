package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Sealer produces opaque confirmation codes that embed the appointment ID
// and the customer email. Codes are AES-GCM sealed so customers cannot
// guess or tamper with them, and the service can verify a code offline
// without a database lookup.
type Sealer struct {
	key []byte
}

func New(base64Key string) (*Sealer, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("decoding sealer key: %w", err)
	}

	if len(key) != 32 {
		return nil, fmt.Errorf("sealer key must be 32 bytes, got %d", len(key))
	}

	return &Sealer{key: key}, nil
}

func (s *Sealer) Seal(appointmentID string, customerEmail string) (string, error) {
	plaintext := []byte(appointmentID + ":" + customerEmail)

	aesgcm, err := s.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

func (s *Sealer) Open(code string) (string, string, error) {
	data, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return "", "", fmt.Errorf("invalid confirmation code")
	}

	aesgcm, err := s.gcm()
	if err != nil {
		return "", "", err
	}

	nonceSize := aesgcm.NonceSize()
	if len(data) < nonceSize {
		return "", "", fmt.Errorf("invalid confirmation code")
	}

	pt, err := aesgcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", "", fmt.Errorf("invalid confirmation code")
	}

	parts := strings.SplitN(string(pt), ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid confirmation code")
	}

	return parts[0], parts[1], nil
}

func (s *Sealer) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
