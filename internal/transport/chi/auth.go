package chi

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/digitalbridge/mongoes/internal/domain/role"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Account is an API user.
type Account struct {
	Name     string
	Password string
	Roles    []string
}

type principalKey struct{}

// Principal is the authenticated caller.
type Principal struct {
	Name  string
	Roles []string
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Authenticator checks HTTP Basic credentials against configured accounts and
// enforces roles through the role hierarchy.
// With no accounts configured, authentication is disabled (pass-through).
type Authenticator struct {
	accounts  map[string]Account
	hierarchy *role.Hierarchy
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(accounts []Account, hierarchy *role.Hierarchy) *Authenticator {
	a := &Authenticator{accounts: make(map[string]Account, len(accounts)), hierarchy: hierarchy}
	for _, acc := range accounts {
		if acc.Name != "" {
			a.accounts[acc.Name] = acc
		}
	}
	return a
}

// Enabled reports whether any account is configured.
func (a *Authenticator) Enabled() bool { return len(a.accounts) > 0 }

// Middleware authenticates every request outside the exempt paths.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	if !a.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := exemptPaths[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		name, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="mongoes"`)
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing basic credentials")
			return
		}
		acc, known := a.accounts[name]
		if !known || subtle.ConstantTimeCompare([]byte(password), []byte(acc.Password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="mongoes"`)
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid credentials")
			return
		}

		p := Principal{Name: acc.Name, Roles: acc.Roles}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

// Require returns a middleware admitting callers granted required, directly
// or through the hierarchy.
func (a *Authenticator) Require(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !a.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
				return
			}
			if !a.hierarchy.Allows(p.Roles, required) {
				writeError(w, http.StatusForbidden, CodeForbidden, "requires "+required)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
