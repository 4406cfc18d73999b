package auth

import (
	"chat-desk/errors"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters based on OWASP/CNIL recommendations
const (
	Memory      = 64 * 1024 // 64 MB
	Iterations  = 3
	Parallelism = 2
	SaltLength  = 16
	KeyLength   = 32
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword encodes an Argon2id hash in the PHC string format, so the
// parameters travel with the hash.
func HashPassword(password string) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, Iterations, Memory, Parallelism, KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, Memory, Iterations, Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

type encodedHash struct {
	version     int
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

func decodeHash(encoded string) (encodedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return encodedHash{}, errMalformedHash
	}

	var h encodedHash
	if _, err := fmt.Sscanf(parts[2], "v=%d", &h.version); err != nil {
		return encodedHash{}, fmt.Errorf("%w: %w", errMalformedHash, err)
	}
	if h.version != argon2.Version {
		return encodedHash{}, fmt.Errorf("%w: unsupported version %d", errMalformedHash, h.version)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.iterations, &h.parallelism); err != nil {
		return encodedHash{}, fmt.Errorf("%w: %w", errMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return encodedHash{}, fmt.Errorf("%w: %w", errMalformedHash, err)
	}
	if h.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return encodedHash{}, fmt.Errorf("%w: %w", errMalformedHash, err)
	}
	return h, nil
}

// ComparePassword re-hashes password with the stored parameters and compares
// in constant time.
func ComparePassword(password, encoded string) (bool, error) {
	h, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	candidate := argon2.IDKey([]byte(password), h.salt, h.iterations, h.memory, h.parallelism, uint32(len(h.hash)))
	return subtle.ConstantTimeCompare(h.hash, candidate) == 1, nil
}
