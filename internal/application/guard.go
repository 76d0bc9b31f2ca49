package application

import "github.com/bnema/groupchat-cli/internal/domain"

// Decision is the route guard's verdict for a navigation target.
type Decision int

const (
	// DecisionWait means hydration has not finished: render nothing,
	// neither the target nor a redirect.
	DecisionWait Decision = iota
	DecisionAllow
	DecisionRedirectLogin
	DecisionRedirectHome
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// AuthenticatedOnly guards targets that require a logged-in member.
// Pure function of the session snapshot; evaluated on every render.
func AuthenticatedOnly(session domain.Session) Decision {
	if !session.Hydrated {
		return DecisionWait
	}
	if session.IsAuthenticated() {
		return DecisionAllow
	}
	return DecisionRedirectLogin
}

// AnonymousOnly guards targets that only make sense logged out, such
// as the login and register forms.
func AnonymousOnly(session domain.Session) Decision {
	if !session.Hydrated {
		return DecisionWait
	}
	if session.IsAuthenticated() {
		return DecisionRedirectHome
	}
	return DecisionAllow
}
