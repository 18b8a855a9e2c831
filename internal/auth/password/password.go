// Package password hashes and verifies credentials with argon2id,
// encoded in the standard $argon2id$ reference format.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	memory   = 64 * 1024
	timeCost = 3
	threads  = 2
	saltLen  = 16
	keyLen   = 32
)

// Hash derives an encoded argon2id hash from a plain-text password.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, keyLen)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, timeCost, threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash. Any
// malformed input verifies false; callers never see a parse error.
func Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	var m, t uint32
	var p uint8
	{
		params := strings.Split(parts[3], ",")
		if len(params) != 3 {
			return false
		}

		mStr, ok := strings.CutPrefix(params[0], "m=")
		if !ok {
			return false
		}
		tStr, ok := strings.CutPrefix(params[1], "t=")
		if !ok {
			return false
		}
		pStr, ok := strings.CutPrefix(params[2], "p=")
		if !ok {
			return false
		}

		m64, err := strconv.ParseUint(mStr, 10, 32)
		if err != nil {
			return false
		}
		t64, err := strconv.ParseUint(tStr, 10, 32)
		if err != nil {
			return false
		}
		p64, err := strconv.ParseUint(pStr, 10, 8)
		if err != nil {
			return false
		}

		m = uint32(m64)
		t = uint32(t64)
		p = uint8(p64)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	check := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, check) == 1
}
