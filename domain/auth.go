package domain

// AuthStatus is the lifecycle position of the session store.
type AuthStatus string

const (
	AuthLoading         AuthStatus = "loading"
	AuthUnauthenticated AuthStatus = "unauthenticated"
	AuthAuthenticated   AuthStatus = "authenticated"
	AuthError           AuthStatus = "error"
)

// AuthState is a read-only snapshot of the session store.
type AuthState struct {
	Status  AuthStatus
	User    *User
	Session *Session
	Error   string
}

// Ready reports whether an identity is established and data may be loaded for it.
func (s AuthState) Ready() bool {
	return s.Status == AuthAuthenticated && s.User != nil
}

// Loading reports whether an auth operation is in flight.
func (s AuthState) Loading() bool {
	return s.Status == AuthLoading
}

// SameIdentity reports whether both states are ready for the same user.
func (s AuthState) SameIdentity(other AuthState) bool {
	return s.Ready() && other.Ready() && s.User.ID == other.User.ID
}
