package controller

import (
	"strconv"
	"strings"

	"specmech-go/proto"
)

// A clock value is a full ISO timestamp, YYYY-MM-DDThh:mm:ssZ.
const clockValueLen = 19

// dispatch executes one parsed command and returns the prompt it earned.
// The switch is exhaustive over the verb set; VerbReboot never reaches here.
func (c *Controller) dispatch(cmd *proto.Command) proto.Prompt {
	switch cmd.Verb {
	case proto.VerbOpen:
		if c.deps.Valves == nil || c.deps.Valves.Open(cmd.Object) != nil {
			return proto.PromptError
		}
	case proto.VerbClose:
		if c.deps.Valves == nil || c.deps.Valves.Close(cmd.Object) != nil {
			return proto.PromptError
		}
	case proto.VerbMove:
		return c.move(cmd)
	case proto.VerbReport:
		return c.report(cmd)
	case proto.VerbSet:
		return c.set(cmd)
	case proto.VerbTest:
		if c.deps.Prober == nil || c.deps.Prober.Probe() != nil {
			return proto.PromptError
		}
	case proto.VerbReboot:
		// Handled before dispatch; a reboot emits its own prompt.
	case proto.VerbUnknown:
		return proto.PromptError
	}
	return proto.PromptOK
}

// move drives one collimator motor. The object letter selects the motor
// ('a' or 'b'); the value is the speed, 0..127 with 64 as stop.
func (c *Controller) move(cmd *proto.Command) proto.Prompt {
	if c.deps.Mover == nil {
		return proto.PromptError
	}
	var motor int
	switch cmd.ObjectChar {
	case 'a':
		motor = 1
	case 'b':
		motor = 2
	default:
		return proto.PromptError
	}
	speed, err := strconv.Atoi(strings.TrimSpace(cmd.Value))
	if err != nil {
		return proto.PromptError
	}
	if c.deps.Mover.Drive(motor, speed) != nil {
		return proto.PromptError
	}
	return proto.PromptOK
}

// set writes a settable object. Only the clock is settable today.
func (c *Controller) set(cmd *proto.Command) proto.Prompt {
	switch cmd.Object {
	case proto.ObjectClockTime:
		if len(cmd.Value) != clockValueLen {
			return proto.PromptError
		}
		if c.deps.Clock == nil || c.deps.Clock.SetTime(cmd.Value) != nil {
			return proto.PromptError
		}
		return proto.PromptOK
	default:
		return proto.PromptError
	}
}
