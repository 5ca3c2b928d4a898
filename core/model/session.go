package model

// Session is one of the two fixed daily coverage windows.
type Session int

const (
	SessionAM Session = iota
	SessionPM
)

// String returns a human-readable representation of the session.
func (s Session) String() string {
	switch s {
	case SessionAM:
		return "AM"
	case SessionPM:
		return "PM"
	default:
		return "unknown"
	}
}

// Other returns the opposite coverage window of the same day.
func (s Session) Other() Session {
	if s == SessionAM {
		return SessionPM
	}
	return SessionAM
}

// ParseSession converts a string such as "AM" into a Session.
func ParseSession(s string) (Session, bool) {
	switch s {
	case "AM", "am":
		return SessionAM, true
	case "PM", "pm":
		return SessionPM, true
	default:
		return 0, false
	}
}

// Sessions lists both windows in sweep order.
func Sessions() []Session {
	return []Session{SessionAM, SessionPM}
}

// Program identifies one of the two isolated cohorts. Assignment pools
// never mix across programs.
type Program int

const (
	ProgramPrimary Program = iota
	ProgramSecondary
)

// String returns a human-readable representation of the program.
func (p Program) String() string {
	switch p {
	case ProgramPrimary:
		return "Primary"
	case ProgramSecondary:
		return "Secondary"
	default:
		return "unknown"
	}
}

// ParseProgram converts a string such as "Primary" into a Program.
func ParseProgram(s string) (Program, bool) {
	switch s {
	case "Primary", "primary":
		return ProgramPrimary, true
	case "Secondary", "secondary":
		return ProgramSecondary, true
	default:
		return 0, false
	}
}

// Programs lists both cohorts in sweep order.
func Programs() []Program {
	return []Program{ProgramPrimary, ProgramSecondary}
}
