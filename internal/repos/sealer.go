package repos

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sb1:"

var (
	keySalt = []byte("keebshop/session-slots/v1")
	keyInfo = []byte("token slot secretbox key")
)

var errUnsealable = errors.New("sealed value cannot be opened")

// Sealer encrypts the token slot at rest. A zero Sealer stores plaintext.
type Sealer struct {
	key *[32]byte
}

func NewSealer(secret string) Sealer {
	if secret == "" {
		return Sealer{}
	}
	return Sealer{key: deriveKey(secret)}
}

// deriveKey stretches the configured passphrase into a secretbox key.
func deriveKey(secret string) *[32]byte {
	var k [32]byte
	r := hkdf.New(sha256.New, []byte(secret), keySalt, keyInfo)
	if _, err := io.ReadFull(r, k[:]); err != nil {
		// hkdf only fails past 255 blocks of output
		panic(err)
	}
	return &k
}

func (s Sealer) Seal(plain string) (string, error) {
	if s.key == nil {
		return plain, nil
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, s.key)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(box), nil
}

func (s Sealer) Open(stored string) (string, error) {
	if s.key == nil {
		if strings.HasPrefix(stored, sealedPrefix) {
			return "", errUnsealable
		}
		return stored, nil
	}
	if !strings.HasPrefix(stored, sealedPrefix) {
		return "", errUnsealable
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil || len(raw) < 24 {
		return "", errUnsealable
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, s.key)
	if !ok {
		return "", errUnsealable
	}
	return string(plain), nil
}
