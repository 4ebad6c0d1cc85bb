package proto

import (
	"strconv"
	"strings"

	"specmech-go/x/conv"
)

// Sentence tags.
const (
	TagCmd      = "CMD" // command echo
	TagErr      = "ERR" // error line
	TagBootTime = "BTM"
	TagEnv      = "ENV"
	TagTime     = "TIM"
	TagVacuum   = "VAC"
	TagVersion  = "VER"
)

// Prompt is the per-command result that selects the terminal prompt shape.
type Prompt uint8

const (
	PromptOK      Prompt = iota // ">"
	PromptError                 // ERR sentence, then ">"
	PromptExclaim               // "!" (awaiting reboot acknowledgment)
)

// Framer builds the checksummed output sentences. Sentences look like
//
//	$S<specID><TAG>,<field1>,...,<fieldN>*HH\r\n
//
// where HH is the two-digit uppercase hex XOR of every byte from index 1 to
// the '*' (the leading '$' is excluded).
type Framer struct {
	SpecID int
}

// Sentence builds one tagged sentence from its fields.
func (f Framer) Sentence(tag string, fields ...string) string {
	var b strings.Builder
	b.WriteString("$S")
	b.WriteString(strconv.Itoa(f.SpecID))
	b.WriteString(tag)
	for _, fld := range fields {
		b.WriteByte(',')
		b.WriteString(fld)
	}
	return appendChecksum(b.String())
}

// Echo frames a raw command line under the CMD tag.
func (f Framer) Echo(raw string) string {
	return f.Sentence(TagCmd, raw)
}

// Err builds the bare error sentence.
func (f Framer) Err() string {
	return f.Sentence(TagErr)
}

// PromptString renders the terminal prompt (or prompt pair) for a result.
// Exactly one of these ends every processed line.
func (f Framer) PromptString(p Prompt) string {
	switch p {
	case PromptOK:
		return ">"
	case PromptError:
		return f.Err() + ">"
	default:
		return "!"
	}
}

// Checksum computes the XOR of every byte of s from index 1.
func Checksum(s string) byte {
	var cs byte
	for i := 1; i < len(s); i++ {
		cs ^= s[i]
	}
	return cs
}

func appendChecksum(s string) string {
	var hex [2]byte
	return s + "*" + string(conv.U8Hex(hex[:], Checksum(s))) + "\r\n"
}

// VerifyChecksum checks a received sentence of the form body*HH\r\n (the
// trailing CRLF is optional). It returns false for anything malformed.
func VerifyChecksum(s string) bool {
	s = strings.TrimRight(s, "\r\n")
	star := strings.LastIndexByte(s, '*')
	if star < 0 || len(s)-star != 3 {
		return false
	}
	want, err := strconv.ParseUint(s[star+1:], 16, 8)
	if err != nil {
		return false
	}
	return Checksum(s[:star]) == byte(want)
}
