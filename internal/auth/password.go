package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/cinema-service/internal/auth/hashparams"
)

const (
	defaultSaltLen   = 16
	defaultKeyLen    = 32
	argon2RecordPart = 6
)

// PasswordHasher hashes passwords with argon2id and verifies argon2id records.
// Records produced by the previous bcrypt scheme are still accepted by Verify.
type PasswordHasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
	rand    io.Reader
}

// HasherOption configures the password hasher.
type HasherOption func(*PasswordHasher)

// WithArgon2Time sets the number of passes.
func WithArgon2Time(t uint32) HasherOption {
	return func(h *PasswordHasher) {
		if t > 0 {
			h.time = t
		}
	}
}

// WithArgon2Memory sets the memory cost in KiB.
func WithArgon2Memory(m uint32) HasherOption {
	return func(h *PasswordHasher) {
		if m > 0 {
			h.memory = m
		}
	}
}

// WithArgon2Threads sets the parallelism.
func WithArgon2Threads(t uint8) HasherOption {
	return func(h *PasswordHasher) {
		if t > 0 {
			h.threads = t
		}
	}
}

// WithSaltSource replaces crypto/rand as the salt source.
func WithSaltSource(r io.Reader) HasherOption {
	return func(h *PasswordHasher) { h.rand = r }
}

// NewPasswordHasher builds a hasher. Defaults: time=1, memory=64MiB, threads=4.
// Costs are clamped to the hashparams limits, the same limits Verify accepts,
// so every record the hasher writes can be verified again.
func NewPasswordHasher(opts ...HasherOption) *PasswordHasher {
	h := &PasswordHasher{
		time:    1,
		memory:  64 * 1024,
		threads: 4,
		keyLen:  defaultKeyLen,
		saltLen: defaultSaltLen,
		rand:    rand.Reader,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.time, h.memory, h.threads = hashparams.Clamp(int(h.time), int(h.memory), int(h.threads))
	return h
}

// Hash returns a self-describing record:
// $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$KEY
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLen)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("%w: generate salt: %v", ErrHashingFault, err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches record. Unparsable records never match.
func (h *PasswordHasher) Verify(password, record string) bool {
	if isBcryptRecord(record) {
		return bcrypt.CompareHashAndPassword([]byte(record), []byte(password)) == nil
	}

	params, salt, expected, ok := decodeArgon2Record(record)
	if !ok {
		return false
	}

	key := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}

type argon2Params struct {
	time    uint32
	memory  uint32
	threads uint8
}

func decodeArgon2Record(record string) (argon2Params, []byte, []byte, bool) {
	var p argon2Params

	parts := strings.Split(record, "$")
	if len(parts) != argon2RecordPart || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, false
	}
	if hashparams.Check(int(p.time), int(p.memory), int(p.threads)) != nil {
		return p, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > hashparams.MaxKeyLen {
		return p, nil, nil, false
	}
	return p, salt, key, true
}

func isBcryptRecord(record string) bool {
	return strings.HasPrefix(record, "$2a$") ||
		strings.HasPrefix(record, "$2b$") ||
		strings.HasPrefix(record, "$2y$")
}
