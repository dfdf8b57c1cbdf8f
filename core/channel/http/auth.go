package http

import (
	"net/http"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/artpar/hyperapi/core/action"
)

// Account is a configured user allowed to authenticate with HTTP Basic.
type Account struct {
	Name         string
	PasswordHash string
	Roles        []string
}

// Users is the set of accounts checked by the auth middleware. It can be
// replaced at runtime when the configuration reloads.
type Users struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewUsers creates a user set.
func NewUsers(accounts ...Account) *Users {
	u := &Users{}
	u.Set(accounts)
	return u
}

// Set replaces all accounts.
func (u *Users) Set(accounts []Account) {
	m := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		m[a.Name] = a
	}

	u.mu.Lock()
	u.accounts = m
	u.mu.Unlock()
}

// Len returns the number of accounts.
func (u *Users) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.accounts)
}

// Authenticate checks a name and password against the stored bcrypt hash.
func (u *Users) Authenticate(name, password string) (action.User, bool) {
	u.mu.RLock()
	a, ok := u.accounts[name]
	u.mu.RUnlock()

	if !ok {
		return action.User{}, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return action.User{}, false
	}
	return action.User{Name: a.Name, Roles: append([]string(nil), a.Roles...)}, true
}

// Auth failure reasons reported to the metrics collector.
const (
	authUnknownUser = "unknown_user"
	authBadPassword = "bad_password"
)

// authMiddleware resolves HTTP Basic credentials into action credentials.
// Requests without an Authorization header proceed anonymously; requests
// with bad credentials are rejected with 401.
func (c *Channel) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, password, ok := r.BasicAuth()
		if !ok {
			next.ServeHTTP(w, r.WithContext(action.WithCredentials(r.Context(), action.Anonymous)))
			return
		}

		user, ok := c.users.Authenticate(name, password)
		if !ok {
			reason := authBadPassword
			if !c.users.known(name) {
				reason = authUnknownUser
			}
			if c.metrics != nil {
				c.metrics.AuthFailures.WithLabelValues(reason).Inc()
			}
			c.logger.Debug().
				Str("user", name).
				Str("reason", reason).
				Str("request_id", requestID(r)).
				Msg("authentication failed")

			c.writeProblem(w, r, http.StatusUnauthorized, "Unauthorized", "invalid credentials", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(action.WithCredentials(r.Context(), user)))
	})
}

func (u *Users) known(name string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	_, ok := u.accounts[name]
	return ok
}

// challenge sets the Basic auth challenge header.
func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="hyperapi", charset="UTF-8"`)
}
