package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload of a locally issued token. The dictionary service
// reads the username and scopes claims; sub carries the same identity.
type Claims struct {
	jwt.RegisteredClaims
	Username string   `json:"username"`
	Scopes   []string `json:"scopes"`
}

// HasScopes reports whether every scope in want is present.
func (c *Claims) HasScopes(want []string) bool {
	have := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		have[s] = struct{}{}
	}
	for _, s := range want {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}
