package core

import "fmt"

// Vartype is the domain of the variables in a binary quadratic model.
type Vartype int

// enumeration of Vartype
const (
	// Spin variables take values in {-1, +1}.
	Spin Vartype = iota
	// Binary variables take values in {0, 1}.
	Binary
)

func (v Vartype) String() string {
	switch v {
	case Spin:
		return "SPIN"
	case Binary:
		return "BINARY"
	default:
		return fmt.Sprintf("Vartype(%d)", int(v))
	}
}

// Valid reports whether v is a known vartype.
func (v Vartype) Valid() bool {
	return v == Spin || v == Binary
}

// ValidValue reports whether val is an admissible assignment for the vartype.
func (v Vartype) ValidValue(val int8) bool {
	switch v {
	case Spin:
		return val == -1 || val == 1
	case Binary:
		return val == 0 || val == 1
	default:
		return false
	}
}
