package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2idPrefix = "$argon2id$"

// Upper bounds applied when decoding stored hashes, so a corrupted row
// cannot make Verify allocate gigabytes.
const (
	maxMemory     = 4 * 1024 * 1024 // 4 GiB expressed in KiB
	maxIterations = 64
	maxKeyLength  = 1024
)

// Hasher hashes and verifies passwords. It holds no mutable state and is
// safe for concurrent use.
type Hasher struct {
	params Params
}

// New creates a Hasher. Zero fields in params fall back to DefaultParams.
func New(params Params) *Hasher {
	return &Hasher{params: params.withDefaults()}
}

// Params returns the parameters used for new hashes.
func (h *Hasher) Params() Params {
	return h.params
}

// Hash derives an Argon2id key from password with a fresh random salt and
// returns it in PHC string format.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix,
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches hash. Malformed or unsupported
// hashes never match.
func (h *Hasher) Verify(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, argon2idPrefix):
		decoded, err := decodeArgon2id(hash)
		if err != nil {
			return false
		}
		key := argon2.IDKey([]byte(password), decoded.salt, decoded.params.Iterations, decoded.params.Memory, decoded.params.Parallelism, uint32(len(decoded.key)))
		return subtle.ConstantTimeCompare(key, decoded.key) == 1
	case isBcrypt(hash):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	default:
		return false
	}
}

// NeedsRehash reports whether hash should be replaced by a fresh Hash call:
// it is not Argon2id, cannot be parsed, or was produced with different
// parameters than the hasher's current ones.
func (h *Hasher) NeedsRehash(hash string) bool {
	decoded, err := decodeArgon2id(hash)
	if err != nil {
		return true
	}
	p := decoded.params
	return p.Memory != h.params.Memory ||
		p.Iterations != h.params.Iterations ||
		p.Parallelism != h.params.Parallelism ||
		uint32(len(decoded.salt)) != h.params.SaltLength ||
		uint32(len(decoded.key)) != h.params.KeyLength
}

type argon2idHash struct {
	params Params
	salt   []byte
	key    []byte
}

func decodeArgon2id(hash string) (*argon2idHash, error) {
	if !strings.HasPrefix(hash, argon2idPrefix) {
		return nil, ErrUnsupportedHash
	}

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, ErrIncompatibleVersion
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, ErrInvalidHash
	}
	if p.Memory == 0 || p.Memory > maxMemory || p.Iterations == 0 || p.Iterations > maxIterations || p.Parallelism == 0 {
		return nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxKeyLength {
		return nil, ErrInvalidHash
	}

	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return &argon2idHash{params: p, salt: salt, key: key}, nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
