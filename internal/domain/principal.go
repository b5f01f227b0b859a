package domain

// AuthMethod describes how a caller authenticated with the API.
type AuthMethod string

const (
	AuthMethodJWT        AuthMethod = "jwt"
	AuthMethodCronSecret AuthMethod = "cron_secret"
)

// Principal captures normalized caller identity independent of auth mechanism.
// Every component takes the caller identity explicitly; nothing reads it from
// ambient global state.
type Principal struct {
	UserID     string
	AuthMethod AuthMethod
	Subject    string
	Issuer     string
	Email      string
	Name       string
}

// IsCron reports whether the caller is the internal cron trigger rather than
// an end user session.
func (p Principal) IsCron() bool {
	return p.AuthMethod == AuthMethodCronSecret
}
