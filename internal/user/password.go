package user

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
