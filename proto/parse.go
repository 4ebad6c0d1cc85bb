// Package proto defines the serial command wire format: the line grammar
// (verb letter, object letter, value, id) and the checksummed sentence
// framing of everything the controller sends back.
package proto

// Bounds, fixed by the wire contract.
const (
	ValueMax  = 40 // longest accepted value string
	IDMax     = 8  // longest accepted command id
	StackSize = 10 // command correlation stack depth
)

// Verb is the closed set of command verbs. The wire carries single ASCII
// letters; anything outside the set parses as VerbUnknown so the dispatcher's
// matching stays exhaustive.
type Verb uint8

const (
	VerbUnknown Verb = iota
	VerbClose        // c
	VerbOpen         // o
	VerbMove         // m
	VerbReport       // r
	VerbSet          // s
	VerbTest         // t
	VerbReboot       // R
)

func verbOf(c byte) Verb {
	switch c {
	case 'c':
		return VerbClose
	case 'o':
		return VerbOpen
	case 'm':
		return VerbMove
	case 'r':
		return VerbReport
	case 's':
		return VerbSet
	case 't':
		return VerbTest
	case 'R':
		return VerbReboot
	}
	return VerbUnknown
}

// Object is the closed set of command objects. Letters are case-sensitive:
// 'b' is both Hartmann doors, 'B' the boot time report.
type Object uint8

const (
	ObjectUnknown     Object = iota
	ObjectShutter            // s
	ObjectLeftDoor           // l
	ObjectRightDoor          // r
	ObjectBothDoors          // b
	ObjectBootTime           // B
	ObjectEnvironment        // e
	ObjectClockTime          // t
	ObjectVacuum             // v
	ObjectVersion            // V
)

func objectOf(c byte) Object {
	switch c {
	case 's':
		return ObjectShutter
	case 'l':
		return ObjectLeftDoor
	case 'r':
		return ObjectRightDoor
	case 'b':
		return ObjectBothDoors
	case 'B':
		return ObjectBootTime
	case 'e':
		return ObjectEnvironment
	case 't':
		return ObjectClockTime
	case 'v':
		return ObjectVacuum
	case 'V':
		return ObjectVersion
	}
	return ObjectUnknown
}

// Command is one parsed command line. A Command lives in a stack slot and is
// reset in place by ParseInto before each parse, so a slot never carries a
// stale field from the command it overwrote.
type Command struct {
	Verb   Verb
	Object Object

	// Raw wire letters, '?' when absent; kept for echo and diagnostics.
	VerbChar   byte
	ObjectChar byte

	Value string // <= ValueMax bytes
	ID    string // <= IDMax bytes
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ParseInto parses a terminated line into cmd, resetting every field first.
//
// Grammar: skip non-letters to the verb letter, skip non-letters to the
// object letter, then the value runs to ';' or end of line (silently
// truncated at ValueMax), and the id follows the ';' (capped at IDMax).
// A line that ends before the verb or object leaves the missing fields at
// their defaults; that is not a parse error. The dispatcher turns an
// unknown verb into a structured error result.
func ParseInto(cmd *Command, line []byte) {
	cmd.Verb = VerbUnknown
	cmd.Object = ObjectUnknown
	cmd.VerbChar = '?'
	cmd.ObjectChar = '?'
	cmd.Value = ""
	cmd.ID = ""

	// A NUL terminates the line wherever it appears.
	if i := indexNul(line); i >= 0 {
		line = line[:i]
	}

	p := 0
	// Verb.
	for p < len(line) && !isLetter(line[p]) {
		p++
	}
	if p == len(line) {
		return
	}
	cmd.VerbChar = line[p]
	cmd.Verb = verbOf(line[p])
	p++

	// Object.
	for p < len(line) && !isLetter(line[p]) {
		p++
	}
	if p == len(line) {
		return
	}
	cmd.ObjectChar = line[p]
	cmd.Object = objectOf(line[p])
	p++

	// Value: up to ';' or end, truncated at ValueMax with the excess dropped.
	start := p
	for p < len(line) && line[p] != ';' {
		p++
	}
	v := line[start:p]
	if len(v) > ValueMax {
		v = v[:ValueMax]
	}
	cmd.Value = string(v)
	if p == len(line) {
		return
	}
	p++ // skip ';'

	// ID: the remainder, capped at IDMax.
	id := line[p:]
	if len(id) > IDMax {
		id = id[:IDMax]
	}
	cmd.ID = string(id)
}

func indexNul(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
