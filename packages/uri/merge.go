package uri

import "fmt"

// CredentialChange describes what a merge did to the credentials of a State.
type CredentialChange int

const (
	// CredentialsNone means neither side carried credentials.
	CredentialsNone CredentialChange = iota
	// CredentialsRetained means the previous credentials were carried over unchanged.
	CredentialsRetained
	// CredentialsReset means the previous credentials were cleared.
	CredentialsReset
	// CredentialsReplaced means the input supplied its own credentials.
	CredentialsReplaced
)

func (c CredentialChange) String() string {
	switch c {
	case CredentialsNone:
		return "none"
	case CredentialsRetained:
		return "retained"
	case CredentialsReset:
		return "reset"
	case CredentialsReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Merge resolves input against current and returns the next State.
//
// Relative input replaces only path and query; scheme, host, port and
// credentials are carried over. Absolute input replaces everything, and the
// credentials of the result come only from input: when input has no
// userinfo the result has none, whatever current held.
//
// On error current is returned unchanged.
func Merge(current State, input string) (State, error) {
	p, err := Parse(input)
	if err != nil {
		return current, err
	}
	next, err := current.Apply(p)
	if err != nil {
		return current, err
	}
	return next, nil
}

// Apply returns the State that results from resolving p against s.
func (s State) Apply(p *Parsed) (State, error) {
	if p == nil {
		return s, fmt.Errorf("%w: nothing to apply", ErrMalformedURL)
	}
	if p.Kind == Absolute {
		return FromParsed(p)
	}
	if s.IsZero() {
		return s, ErrNoBase
	}
	next := s
	if p.Path != "" {
		next.Path = p.Path
	}
	next.RawQuery = p.RawQuery
	return next, nil
}

// CredentialEffect classifies how credentials changed between before and after.
func CredentialEffect(before, after State) CredentialChange {
	switch {
	case before.User == nil && after.User == nil:
		return CredentialsNone
	case after.User == nil:
		return CredentialsReset
	case before.User == after.User:
		return CredentialsRetained
	default:
		return CredentialsReplaced
	}
}
