package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims represents the JWT claims issued by the upstream identity provider.
type AccessClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"` // "student", "lecturer" or "manager"
}

// GetAccountID returns the account ID from the JWT subject claim.
func (c *AccessClaims) GetAccountID() string {
	return c.Subject
}

// Actor returns the identity the engine works with for this request.
func (c *AccessClaims) Actor() Actor {
	return Actor{
		AccountID: c.Subject,
		Email:     c.Email,
		Role:      c.Role,
	}
}

// Actor is the per-request identity handed to the engine. The engine does
// not authenticate; it trusts whatever the middleware put in the context.
type Actor struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}
