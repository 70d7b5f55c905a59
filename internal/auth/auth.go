package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"

	v1 "github.com/aevon-lab/scoring/internal/api/v1"
)

// HourLayout is the UTC hour stamp mixed into admin digests.
const HourLayout = "2006010215"

// Secrets are the shared salts tokens are derived from.
type Secrets struct {
	Salt      string
	AdminSalt string
}

// DefaultSecrets returns the built-in salts.
func DefaultSecrets() Secrets {
	return Secrets{
		Salt:      "Otus",
		AdminSalt: "42",
	}
}

// Authenticator checks envelope tokens. It holds no per-call state.
type Authenticator struct {
	secrets Secrets
	now     func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithClock overrides the clock used for admin digests.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

func New(secrets Secrets, opts ...Option) *Authenticator {
	a := &Authenticator{
		secrets: secrets,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Check reports whether req carries the digest expected for its caller.
func (a *Authenticator) Check(req *v1.MethodRequest) bool {
	var expected string
	if req.IsAdmin() {
		expected = AdminDigest(a.now(), a.secrets.AdminSalt)
	} else {
		var account string
		if req.Account != nil {
			account = *req.Account
		}
		expected = Digest(account, req.Login, a.secrets.Salt)
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(req.Token)) == 1
}

// Digest is the token for a regular caller.
func Digest(account, login, salt string) string {
	sum := sha512.Sum512([]byte(account + login + salt))
	return hex.EncodeToString(sum[:])
}

// AdminDigest is the admin token valid during the UTC hour containing t.
func AdminDigest(t time.Time, adminSalt string) string {
	sum := sha512.Sum512([]byte(t.UTC().Format(HourLayout) + adminSalt))
	return hex.EncodeToString(sum[:])
}
