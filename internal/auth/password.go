package auth

import "golang.org/x/crypto/bcrypt"

// MinBcryptCost is the lowest work factor accepted for new hashes.
const MinBcryptCost = 10

// HashPassword hashes a plaintext password with the configured cost,
// clamped to MinBcryptCost. The result embeds a random per-hash salt, so
// hashing the same password twice yields different values.
func HashPassword(password string, cost int) (string, error) {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
