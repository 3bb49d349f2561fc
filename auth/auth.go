// Package auth holds the credential descriptor sent with every module call.
package auth

import (
	"maps"
	"time"
)

// Credential field names as they appear on the wire.
const (
	FieldAccount    = "account"
	FieldUser       = "user"
	FieldSubaccount = "subaccount"
	FieldRights     = "rights"
	FieldMode       = "mode"
	FieldHash       = "hash"
	FieldPassword   = "password"
	FieldAPIKey     = "apikey"
	FieldClientName = "client_name"
	FieldUserIP     = "user_ip"
)

// Login modes.
const (
	ModeNone     = "none"
	ModeHash     = "hash"
	ModePassword = "password"
	ModeAPIKey   = "apikey"
)

// Rights levels.
const (
	RightsAnonymous = "anonymous"
	RightsUser      = "user"
	RightsSubuser   = "subuser"
)

const (
	// DefaultClientName is used by SetClientName("").
	DefaultClientName = "Go Wrappers"
	// DefaultClientIP is used when no client address is known.
	DefaultClientIP = "127.0.0.1"
)

// RevalidateFunc refreshes an Auth in place, e.g. by logging in again and
// storing a new session hash.
type RevalidateFunc func(a *Auth) error

// Auth is an authentication descriptor for one session.
//
// It is not safe for concurrent mutation; share it read-only or confine it
// to one call sequence.
type Auth struct {
	fields          map[string]string
	extra           map[string]any
	authenticatedAt time.Time
	revalidate      RevalidateFunc
}

// New creates an Auth from a credential map and optional extra data.
// Both maps are copied.
func New(fields map[string]string, extra map[string]any) *Auth {
	a := &Auth{
		fields: make(map[string]string),
		extra:  make(map[string]any),
	}
	if len(fields) > 0 {
		a.SetFields(fields)
	}
	if len(extra) > 0 {
		a.SetExtra(extra)
	}
	return a
}

// NewAnonymous creates an anonymous Auth for account.
func NewAnonymous(account string) *Auth {
	a := New(nil, nil)
	a.SetAccount(account)
	a.SetAnonymous()
	return a
}

func (a *Auth) set(key, value string) {
	if a.fields == nil {
		a.fields = make(map[string]string)
	}
	a.fields[key] = value
}

// IsAccountSet reports whether a non-empty account is set.
func (a *Auth) IsAccountSet() bool {
	return a.fields[FieldAccount] != ""
}

// IsLoginMethodSet reports whether a non-empty login mode is set.
func (a *Auth) IsLoginMethodSet() bool {
	return a.fields[FieldMode] != ""
}

// IsValid reports whether the descriptor can authenticate a call:
// an account AND a login mode must both be set.
func (a *Auth) IsValid() bool {
	return a.IsAccountSet() && a.IsLoginMethodSet()
}

// SetAnonymous switches to anonymous access.
func (a *Auth) SetAnonymous() {
	a.set(FieldUser, "anonymous")
	a.set(FieldRights, RightsAnonymous)
	a.set(FieldMode, ModeNone)
}

// SetUser sets account and user with user rights.
func (a *Auth) SetUser(account, user string) {
	a.set(FieldAccount, account)
	a.set(FieldUser, user)
	a.set(FieldRights, RightsUser)
}

// SetSubuser sets subaccount and user with subuser rights.
func (a *Auth) SetSubuser(subaccount, user string) {
	a.set(FieldUser, user)
	a.set(FieldSubaccount, subaccount)
	a.set(FieldRights, RightsSubuser)
}

func (a *Auth) SetAccount(name string) { a.set(FieldAccount, name) }

func (a *Auth) Account() string { return a.fields[FieldAccount] }

func (a *Auth) User() string { return a.fields[FieldUser] }

func (a *Auth) Rights() string { return a.fields[FieldRights] }

func (a *Auth) Mode() string { return a.fields[FieldMode] }

// SetHash authenticates with a session hash obtained earlier.
func (a *Auth) SetHash(hash string) {
	a.set(FieldHash, hash)
	a.set(FieldMode, ModeHash)
}

// SetPassword authenticates with a password.
func (a *Auth) SetPassword(password string) {
	a.set(FieldPassword, password)
	a.set(FieldMode, ModePassword)
}

// SetAPIKey authenticates with an API key.
func (a *Auth) SetAPIKey(key string) {
	a.set(FieldAPIKey, key)
	a.set(FieldMode, ModeAPIKey)
}

// SetClientName sets the client name; empty means DefaultClientName.
func (a *Auth) SetClientName(name string) {
	if name == "" {
		name = DefaultClientName
	}
	a.set(FieldClientName, name)
}

func (a *Auth) ClientName() string { return a.fields[FieldClientName] }

// SetClientIP sets the end-user address; empty means DefaultClientIP.
func (a *Auth) SetClientIP(ip string) {
	if ip == "" {
		ip = DefaultClientIP
	}
	a.set(FieldUserIP, ip)
}

// ClientIP returns the end-user address, setting the default first if none
// was configured.
func (a *Auth) ClientIP() string {
	if _, ok := a.fields[FieldUserIP]; !ok {
		a.SetClientIP("")
	}
	return a.fields[FieldUserIP]
}

// Fields returns a copy of the credential map as sent on the wire.
func (a *Auth) Fields() map[string]string {
	out := make(map[string]string, len(a.fields))
	maps.Copy(out, a.fields)
	return out
}

// SetFields replaces the credential map with a copy of fields.
func (a *Auth) SetFields(fields map[string]string) {
	a.fields = make(map[string]string, len(fields))
	maps.Copy(a.fields, fields)
}

// SetExtra replaces the extra side-channel data.
func (a *Auth) SetExtra(extra map[string]any) {
	a.extra = make(map[string]any, len(extra))
	maps.Copy(a.extra, extra)
}

// AddExtra sets one extra entry.
func (a *Auth) AddExtra(name string, data any) {
	if a.extra == nil {
		a.extra = make(map[string]any)
	}
	a.extra[name] = data
}

// Extra returns a copy of the extra side-channel data.
func (a *Auth) Extra() map[string]any {
	out := make(map[string]any, len(a.extra))
	maps.Copy(out, a.extra)
	return out
}

// AuthenticatedAt returns when the session was last (re)validated.
// Zero if never.
func (a *Auth) AuthenticatedAt() time.Time { return a.authenticatedAt }

// MarkAuthenticated records a successful authentication at t.
func (a *Auth) MarkAuthenticated(t time.Time) { a.authenticatedAt = t }

// OnRevalidate registers the callback used by Revalidate.
func (a *Auth) OnRevalidate(fn RevalidateFunc) { a.revalidate = fn }

// CanRevalidate reports whether a revalidation callback is registered.
func (a *Auth) CanRevalidate() bool { return a.revalidate != nil }

// Revalidate runs the registered callback. It returns false without error
// when no callback is registered. The callback may replace any state of a.
func (a *Auth) Revalidate() (bool, error) {
	if a.revalidate == nil {
		return false, nil
	}
	if err := a.revalidate(a); err != nil {
		return false, err
	}
	a.authenticatedAt = time.Now()
	return true, nil
}
