package identity

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// DisplayName extracts a human-readable name from a Google ID token
// without verifying it; verification is the backend's job. Falls back
// to the email claim, then to the empty string.
func DisplayName(idToken string) string {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return ""
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}
	var claims struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}
	if claims.Name != "" {
		return claims.Name
	}
	return claims.Email
}
