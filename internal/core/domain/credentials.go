package domain

import "time"

// Credentials stores the bearer token of the signed-in user.
// The token is issued by an external identity provider and is opaque here.
type Credentials struct {
	// AccessToken is the bearer token for remote API access.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`

	// AccountIdentifier is the user's email or username, when known.
	AccountIdentifier string `json:"account_identifier,omitempty"`

	// Expiry is when the access token expires. Zero means no expiry is known.
	Expiry time.Time `json:"expiry,omitempty"`

	// CreatedAt is when the credentials were stored.
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the access token has expired.
func (c *Credentials) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// IsAuthenticated returns true if the credentials hold a usable token.
func (c *Credentials) IsAuthenticated() bool {
	return c != nil && c.AccessToken != "" && !c.IsExpired()
}
