// Package identity reads the current viewer from a marketplace session token.
// The token is decoded, not verified: the result is a display hint and never
// an authorization decision.
package identity

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Viewer is the person looking at an auction.
type Viewer struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
}

// Anonymous reports whether no viewer identity is known.
func (v Viewer) Anonymous() bool {
	return v.UserID == ""
}

var parser = jwt.NewParser()

// ViewerFromToken decodes the claims of a bearer token. It returns false for
// empty or undecodable tokens; that is the anonymous viewer, not an error.
func ViewerFromToken(token string) (Viewer, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Viewer{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Viewer{}, false
	}

	v := Viewer{
		UserID: stringClaim(claims, "userId"),
		Role:   stringClaim(claims, "role"),
		Name:   stringClaim(claims, "name"),
	}
	if sub, err := claims.GetSubject(); err == nil {
		v.Email = sub
	}
	if v.UserID == "" {
		return Viewer{}, false
	}
	return v, true
}

// BearerToken extracts the session token from the Authorization header,
// falling back to the "token" query parameter browsers use for WebSocket upgrades.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}

// FromRequest is ViewerFromToken(BearerToken(r)).
func FromRequest(r *http.Request) (Viewer, bool) {
	return ViewerFromToken(BearerToken(r))
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
