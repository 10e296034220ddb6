package model

// Decision is the outcome of an access check: proceed, or redirect with a reason.
type Decision struct {
	Redirect bool
	Reason   RedirectReason
	Target   string
}

// Proceed allows the page to render.
func Proceed() Decision {
	return Decision{}
}

// RedirectTo sends the user to the login view for the given reason.
func RedirectTo(reason RedirectReason) Decision {
	return Decision{Redirect: true, Reason: reason, Target: LoginPath}
}

// Proceeding reports whether the decision allows the page to render.
func (d Decision) Proceeding() bool {
	return !d.Redirect
}

// String renders the decision for logs and CLI output, e.g. "redirect(invalid-token)".
func (d Decision) String() string {
	if !d.Redirect {
		return "proceed"
	}
	return "redirect(" + string(d.Reason) + ")"
}
