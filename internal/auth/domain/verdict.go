package domain

// Verdict is the closed set of caller identities the API distinguishes.
// It is decided once at request entry and carried in the request context.
type Verdict int

const (
	// VerdictAnonymous is an unauthenticated or unrecognized caller.
	VerdictAnonymous Verdict = iota
	// VerdictUser is an authenticated regular user.
	VerdictUser
	// VerdictStaff is an authenticated user with the staff role.
	VerdictStaff
	// VerdictService is the system's own service identity (internal
	// callers presenting the shared service token).
	VerdictService
)

func (v Verdict) String() string {
	switch v {
	case VerdictUser:
		return "user"
	case VerdictStaff:
		return "staff"
	case VerdictService:
		return "service"
	default:
		return "anonymous"
	}
}

// CanSend reports whether this caller may dispatch notifications to
// arbitrary recipients.
func (v Verdict) CanSend() bool {
	return v == VerdictStaff || v == VerdictService
}
