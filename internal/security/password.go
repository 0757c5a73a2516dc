package security

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the stored credential for a user. bcrypt's
// default cost is fine for an admin-sized user table.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports a non-nil error on mismatch; callers map it to
// the same response as an unknown email.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
