package user

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters; process-wide, fixed at startup.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// HashPassword derives an scrypt key from pwd under a fresh random salt and
// encodes the credential as "hex(key).hex(salt)". Empty passwords are allowed
// at this layer; policy lives in the validation models.
func HashPassword(pwd string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generating salt")
	}
	key, err := scrypt.Key([]byte(pwd), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", errors.Wrap(err, "deriving key")
	}
	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// CheckPassword reports whether pwd matches the stored credential.
// legacy reports that the credential is a pre-hashing plaintext record that
// matched; callers must re-hash it on the spot so the plaintext path never
// survives a successful login.
// A malformed credential is a mismatch, not an error; err is reserved for KDF
// failure and must never be treated as "password incorrect".
func CheckPassword(pwd, credential string) (ok, legacy bool, err error) {
	keyHex, saltHex, found := strings.Cut(credential, ".")
	if !found {
		// transitional plaintext record (bootstrap data only)
		match := subtle.ConstantTimeCompare([]byte(pwd), []byte(credential)) == 1
		return match, match, nil
	}

	storedKey, kerr := hex.DecodeString(keyHex)
	if kerr != nil || len(storedKey) == 0 {
		return false, false, nil
	}
	salt, serr := hex.DecodeString(saltHex)
	if serr != nil || len(salt) == 0 {
		return false, false, nil
	}

	key, err := scrypt.Key([]byte(pwd), salt, scryptN, scryptR, scryptP, len(storedKey))
	if err != nil {
		return false, false, errors.Wrap(err, "deriving key")
	}
	return subtle.ConstantTimeCompare(storedKey, key) == 1, false, nil
}
