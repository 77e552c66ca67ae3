package models

// AccessLevel is the ordered capability level of a user account. Levels form
// a total order; a gate that requires level L admits any user whose level
// compares >= L.
type AccessLevel int

const (
	// AccessBanned accounts cannot authenticate.
	AccessBanned AccessLevel = iota
	// AccessQuarantined accounts can read but not create content.
	AccessQuarantined
	// AccessUnverified accounts have not completed registration.
	AccessUnverified
	// AccessVerified is the normal participating user level.
	AccessVerified
	// AccessModerator accounts can act on other users' content.
	AccessModerator
	// AccessAdmin accounts can administer the platform.
	AccessAdmin
)

// AtLeast reports whether the level grants the capabilities of min.
func (l AccessLevel) AtLeast(min AccessLevel) bool {
	return l >= min
}

func (l AccessLevel) String() string {
	switch l {
	case AccessBanned:
		return "banned"
	case AccessQuarantined:
		return "quarantined"
	case AccessUnverified:
		return "unverified"
	case AccessVerified:
		return "verified"
	case AccessModerator:
		return "moderator"
	case AccessAdmin:
		return "admin"
	default:
		return "unknown"
	}
}
