package quiz

// Identity is the minimal capability the gate needs from an identity provider.
type Identity interface {
	Authenticated() bool
	ID() (string, bool)
}

// Decision is the gate's verdict for one generation request.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err converts a deny decision into an *AccessDeniedError, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &AccessDeniedError{Reason: d.Reason}
}

// CheckAccess decides whether a generation request may proceed.
//
// trialUsed is taken as given. It may come straight from a client header, so
// an anonymous caller can claim an unused trial at will; hardening that needs
// a server-side ledger keyed on something the client cannot reset.
func CheckAccess(id Identity, trialUsed bool) Decision {
	if id != nil && id.Authenticated() {
		return Decision{Allowed: true}
	}
	if trialUsed {
		return Decision{Reason: DenyTrialExhausted}
	}
	return Decision{Allowed: true}
}

// Anonymous is the identity used when no provider identity is available.
type Anonymous struct{}

func (Anonymous) Authenticated() bool { return false }
func (Anonymous) ID() (string, bool)  { return "", false }
