package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost matches the cost of the accounts created by the seed tool.
const PasswordCost = 10

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// dummyHash is compared against when the account does not exist so that
// unknown emails take as long as wrong passwords.
var dummyHash, _ = HashPassword("whisperbox-timing-equalizer")

// CheckPasswordOrDummy runs a comparison against hash, or against a fixed
// dummy hash when hash is empty. It reports whether the password matched a
// real hash.
func CheckPasswordOrDummy(hash, password string) bool {
	if hash == "" {
		_ = CheckPassword(dummyHash, password)
		return false
	}
	return CheckPassword(hash, password) == nil
}
