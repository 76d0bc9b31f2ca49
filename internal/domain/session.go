package domain

// SessionPhase describes where a session is in its lifecycle. A session
// starts in PhaseHydrating and leaves it exactly once, after the stored
// credentials have been read.
type SessionPhase string

const (
	PhaseHydrating     SessionPhase = "hydrating"
	PhaseAnonymous     SessionPhase = "anonymous"
	PhaseAuthenticated SessionPhase = "authenticated"
)

// Session is an immutable snapshot of the in-memory session state.
type Session struct {
	Token    string
	Member   *Member
	Hydrated bool
}

// IsAuthenticated is derived from the token alone: a session with a
// member but no token is still anonymous.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

func (s Session) Phase() SessionPhase {
	if !s.Hydrated {
		return PhaseHydrating
	}
	if s.IsAuthenticated() {
		return PhaseAuthenticated
	}
	return PhaseAnonymous
}
