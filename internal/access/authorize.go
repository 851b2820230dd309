package access

// Outcome is the terminal state of a navigation attempt.
type Outcome string

const (
	Allowed    Outcome = "allowed"
	Redirected Outcome = "redirected"
)

// Decision is the result of evaluating one navigation request.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Allow is the decision permitting render.
func Allow() Decision { return Decision{Outcome: Allowed} }

// Redirect is the decision sending the client to location.
func Redirect(location string) Decision {
	return Decision{Outcome: Redirected, Location: location}
}

// Allowed reports whether the view may render.
func (d Decision) Allowed() bool { return d.Outcome == Allowed }

// Authorize evaluates a navigation request against the current session. It has no
// side effects and keeps no memory between calls.
func Authorize(route Route, s *Session) Decision {
	if s == nil {
		return Redirect(LoginPath)
	}
	dashboard, err := DefaultDashboardFor(s.Role)
	if err != nil {
		// unknown role is handled as anonymous
		return Redirect(LoginPath)
	}
	if !route.Permits(s.Role) {
		return Redirect(dashboard)
	}
	return Allow()
}
