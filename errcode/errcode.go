package errcode

// Code is a stable, wire-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Bus transaction failures. Originate in the twi driver and are forwarded
	// unchanged by every device handler.
	NoAck    Code = "no_ack"
	ArbLost  Code = "arb_lost"
	BusFault Code = "bus_fault"
	Timeout  Code = "timeout"

	// Protocol failures, produced by the command loop.
	UnknownVerb   Code = "unknown_verb"
	UnknownObject Code = "unknown_object"
	InvalidValue  Code = "invalid_value"
	NotReady      Code = "not_ready"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// IsBus reports whether err is one of the bus transaction codes.
func IsBus(err error) bool {
	switch Of(err) {
	case NoAck, ArbLost, BusFault, Timeout:
		return true
	}
	return false
}
