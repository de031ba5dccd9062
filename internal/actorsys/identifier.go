package actorsys

import (
	"strconv"
	"strings"
)

// SystemId is an immutable string naming a host. It is chosen once, at
// system construction, and never changes for the lifetime of the System.
type SystemId string

// ActorId is a 64-bit dense integer allocated from a per-system counter. An
// ActorId identifies an actor within one SystemId; it is never reused
// within the lifetime of a system, even after the actor it names has been
// killed (invariant I1).
type ActorId uint64

// identifierKind tags which variant of Identifier is populated.
type identifierKind uint8

const (
	kindLocal identifierKind = iota
	kindLocalNamed
	kindForeign
	kindForeignNamed
)

// Identifier addresses an actor, possibly on another system. It is a value
// type: cheap to copy, compare, and pass by value. The zero Identifier is
// not meaningful; construct one with Local, LocalNamed, Foreign,
// ForeignNamed, or ParseIdentifier.
type Identifier struct {
	kind   identifierKind
	system SystemId
	id     ActorId
	name   string
}

// Local addresses an actor on the current system by id.
func Local(id ActorId) Identifier {
	return Identifier{kind: kindLocal, id: id}
}

// LocalNamed addresses an actor on the current system by name.
func LocalNamed(name string) Identifier {
	return Identifier{kind: kindLocalNamed, name: name}
}

// Foreign addresses an actor on a remote system by id.
func Foreign(system SystemId, id ActorId) Identifier {
	return Identifier{kind: kindForeign, system: system, id: id}
}

// ForeignNamed addresses an actor on a remote system by name.
func ForeignNamed(system SystemId, name string) Identifier {
	return Identifier{kind: kindForeignNamed, system: system, name: name}
}

// IsLocalTo reports whether this Identifier names the given system, either
// implicitly (no system prefix) or explicitly (an equal system prefix).
// Foreign-kind identifiers naming a different system return false.
func (id Identifier) IsLocalTo(sys SystemId) bool {
	switch id.kind {
	case kindLocal, kindLocalNamed:
		return true
	case kindForeign, kindForeignNamed:
		return id.system == sys
	default:
		return false
	}
}

// ActorID returns the numeric id for Local/Foreign identifiers and false
// for identifiers addressed by name.
func (id Identifier) ActorID() (ActorId, bool) {
	switch id.kind {
	case kindLocal, kindForeign:
		return id.id, true
	default:
		return 0, false
	}
}

// Name returns the name for LocalNamed/ForeignNamed identifiers and false
// for identifiers addressed by numeric id.
func (id Identifier) Name() (string, bool) {
	switch id.kind {
	case kindLocalNamed, kindForeignNamed:
		return id.name, true
	default:
		return "", false
	}
}

// System returns the explicit system prefix for Foreign/ForeignNamed
// identifiers and false for Local/LocalNamed ones (which are implicitly
// addressed to "whatever system resolves this").
func (id Identifier) System() (SystemId, bool) {
	switch id.kind {
	case kindForeign, kindForeignNamed:
		return id.system, true
	default:
		return "", false
	}
}

// String renders the canonical textual form of an Identifier:
// "system:name", "system:#id", "name", or "#id". The system prefix is
// omitted for Local/LocalNamed identifiers, which denote the current
// system.
func (id Identifier) String() string {
	var b strings.Builder

	if sys, ok := id.System(); ok {
		b.WriteString(string(sys))
		b.WriteByte(':')
	}

	if numericID, ok := id.ActorID(); ok {
		b.WriteByte('#')
		b.WriteString(strconv.FormatUint(uint64(numericID), 10))
		return b.String()
	}

	name, _ := id.Name()
	b.WriteString(name)
	return b.String()
}

// ParseIdentifier parses the wire grammar `(system ':')? (name | '#' u64)`.
// Neither the system component nor a name may contain a colon (a name
// matches `[^:#][^:]*`); at most one colon is therefore ever meaningful in
// well-formed input. A name may not begin with '#', which is reserved for
// numeric ids. Parsing is strict: malformed input always returns an
// IdentifierParseError, never a silently coerced value.
func ParseIdentifier(s string) (Identifier, error) {
	if s == "" {
		return Identifier{}, &IdentifierParseError{
			Input: s, Reason: "identifier must not be empty",
		}
	}

	system, rest, hasSystem := strings.Cut(s, ":")
	if !hasSystem {
		rest = system
		system = ""
	}

	if rest == "" {
		return Identifier{}, &IdentifierParseError{
			Input: s, Reason: "missing name or id after ':'",
		}
	}

	if hasSystem && system == "" {
		return Identifier{}, &IdentifierParseError{
			Input: s, Reason: "system prefix must not be empty",
		}
	}

	if strings.Contains(rest, ":") {
		return Identifier{}, &IdentifierParseError{
			Input: s, Reason: "identifier must contain at most one ':'",
		}
	}

	if rest[0] == '#' {
		numericStr := rest[1:]
		if numericStr == "" {
			return Identifier{}, &IdentifierParseError{
				Input: s, Reason: "'#' must be followed by a numeric id",
			}
		}

		numericID, err := strconv.ParseUint(numericStr, 10, 64)
		if err != nil {
			return Identifier{}, &IdentifierParseError{
				Input: s, Reason: "invalid numeric id: " + err.Error(),
			}
		}

		if hasSystem {
			return Foreign(SystemId(system), ActorId(numericID)), nil
		}
		return Local(ActorId(numericID)), nil
	}

	if hasSystem {
		return ForeignNamed(SystemId(system), rest), nil
	}
	return LocalNamed(rest), nil
}
