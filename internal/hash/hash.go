package hash

import "golang.org/x/crypto/bcrypt"

// bcrypt only reads the first 72 bytes of a password; longer ones are
// cut at that length, never rejected.
const maxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
