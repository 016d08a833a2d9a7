// Package testhelpers provides containers and tokens for cinemind tests.
package testhelpers

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// GenerateTestJWT creates an unsigned token (alg: none) whose subject is
// userID. It is accepted only when signature verification is disabled.
func GenerateTestJWT(userID uuid.UUID, email string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	payload := fmt.Sprintf(`{"sub":"%s","iss":"test"`, userID)
	if email != "" {
		payload += fmt.Sprintf(`,"email":"%s"`, email)
	}
	payload += "}"

	return header + "." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + "."
}

// GenerateTestJWTWithBearer returns the token with the "Bearer " prefix.
func GenerateTestJWTWithBearer(userID uuid.UUID, email string) string {
	return "Bearer " + GenerateTestJWT(userID, email)
}
