package action

import (
	"context"
	"slices"
)

// Credentials describe the caller of an operation.
type Credentials interface {
	Subject() string
	Authenticated() bool
	HasRole(role string) bool
}

// Permission decides whether credentials may invoke an operation.
type Permission func(ctx context.Context, c Credentials) bool

// User is an authenticated caller with roles.
type User struct {
	Name  string
	Roles []string
}

func (u User) Subject() string          { return u.Name }
func (u User) Authenticated() bool      { return true }
func (u User) HasRole(role string) bool { return slices.Contains(u.Roles, role) }

type anonymous struct{}

func (anonymous) Subject() string     { return "" }
func (anonymous) Authenticated() bool { return false }
func (anonymous) HasRole(string) bool { return false }

// Anonymous is the credentials of an unauthenticated caller.
var Anonymous Credentials = anonymous{}

// Authenticated permits any authenticated caller.
func Authenticated() Permission {
	return func(_ context.Context, c Credentials) bool {
		return c != nil && c.Authenticated()
	}
}

// RequireRole permits callers holding role.
func RequireRole(role string) Permission {
	return func(_ context.Context, c Credentials) bool {
		return c != nil && c.HasRole(role)
	}
}

// Allowed evaluates p, treating a nil permission as allow-all and nil
// credentials as anonymous.
func (p Permission) Allowed(ctx context.Context, c Credentials) bool {
	if p == nil {
		return true
	}
	if c == nil {
		c = Anonymous
	}
	return p(ctx, c)
}

type credentialsKey struct{}

// WithCredentials stores credentials in ctx.
func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

// CredentialsFrom returns the credentials stored in ctx, or Anonymous.
func CredentialsFrom(ctx context.Context) Credentials {
	if c, ok := ctx.Value(credentialsKey{}).(Credentials); ok && c != nil {
		return c
	}
	return Anonymous
}
