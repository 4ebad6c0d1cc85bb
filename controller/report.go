package controller

import (
	"fmt"

	"specmech-go/proto"
)

// report assembles and emits one report sentence. A read failure emits no
// sentence at all; the error prompt is the whole answer.
func (c *Controller) report(cmd *proto.Command) proto.Prompt {
	switch cmd.Object {
	case proto.ObjectBootTime:
		c.emit(c.fr.Sentence(proto.TagBootTime, c.bootTimeField(), cmd.ID))
	case proto.ObjectEnvironment:
		return c.reportEnv(cmd)
	case proto.ObjectClockTime:
		if c.deps.Clock == nil {
			return proto.PromptError
		}
		iso, err := c.deps.Clock.Time()
		if err != nil {
			return proto.PromptError
		}
		c.emit(c.fr.Sentence(proto.TagTime, iso, cmd.ID))
	case proto.ObjectVacuum:
		return c.reportVacuum(cmd)
	case proto.ObjectVersion:
		c.emit(c.fr.Sentence(proto.TagVersion, c.cfg.Version, cmd.ID))
	default:
		return proto.PromptError
	}
	return proto.PromptOK
}

// bootTimeField prefers the time latched at the reboot acknowledgment and
// falls back to the persisted record.
func (c *Controller) bootTimeField() string {
	if c.bootTime != "" {
		return c.bootTime
	}
	if c.deps.Store != nil {
		return c.deps.Store.BootTime()
	}
	return ""
}

// reportEnv interleaves temperature and humidity channels 0..2, then the
// fourth temperature: t0,h0,t1,h1,t2,h2,t3.
func (c *Controller) reportEnv(cmd *proto.Command) proto.Prompt {
	if c.deps.Env == nil {
		return proto.PromptError
	}
	fields := make([]string, 0, 8)
	for i := 0; i < 3; i++ {
		t, err := c.deps.Env.Temperature(i)
		if err != nil {
			return proto.PromptError
		}
		h, err := c.deps.Env.Humidity(i)
		if err != nil {
			return proto.PromptError
		}
		fields = append(fields, fmt.Sprintf("%3.1fC", t), fmt.Sprintf("%1.0f%%", h))
	}
	t3, err := c.deps.Env.Temperature(3)
	if err != nil {
		return proto.PromptError
	}
	fields = append(fields, fmt.Sprintf("%3.1fC", t3), cmd.ID)
	c.emit(c.fr.Sentence(proto.TagEnv, fields...))
	return proto.PromptOK
}

func (c *Controller) reportVacuum(cmd *proto.Command) proto.Prompt {
	if c.deps.Vacuum == nil {
		return proto.PromptError
	}
	r, err := c.deps.Vacuum.Red()
	if err != nil {
		return proto.PromptError
	}
	b, err := c.deps.Vacuum.Blue()
	if err != nil {
		return proto.PromptError
	}
	c.emit(c.fr.Sentence(proto.TagVacuum,
		fmt.Sprintf("%5.2f", r), "rvac",
		fmt.Sprintf("%5.2f", b), "bvac",
		cmd.ID))
	return proto.PromptOK
}
