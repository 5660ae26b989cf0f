package util

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

// ShortUUID generates a short UUID with 22 symbols
func ShortUUID() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:]) // 22 symbols
}

// GenerateUniqueID generates a URL-safe unique ID with the requested length
func GenerateUniqueID(length int) (string, error) {
	u := uuid.New()
	encoded := base64.RawURLEncoding.EncodeToString(u[:]) // 22 symbols without padding

	if length > len(encoded) {
		return "", errors.New("requested length exceeds the maximum possible")
	}

	return encoded[:length], nil
}
