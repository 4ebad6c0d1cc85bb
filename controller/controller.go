// Package controller is the command loop of the mechanism controller: it
// owns the receive rings, the reboot handshake, the command stack and the
// dispatcher, and it is the only caller of the shared bus.
//
// Two execution contexts exist. The receive worker (Ingest) appends bytes to
// the ring and nothing else. Everything else, including every bus
// transaction, runs on the single goroutine inside Run, so commands complete
// strictly in arrival order and each one's output is flushed before the next
// line is parsed.
package controller

import (
	"context"
	"io"
	"time"

	"specmech-go/proto"
	"specmech-go/x/ring"
)

// Collaborator contracts. The loop sees hardware only through these.
type (
	// Clock reads and sets the day-time clock as ISO strings.
	Clock interface {
		Time() (string, error)
		SetTime(iso string) error
	}

	// ValveBank moves the pneumatic mechanisms.
	ValveBank interface {
		Open(obj proto.Object) error
		Close(obj proto.Object) error
	}

	// Environment reads the temperature and humidity channels.
	Environment interface {
		Temperature(i int) (float32, error)
		Humidity(i int) (float32, error)
	}

	// VacuumGauges reads the two ion pump controllers.
	VacuumGauges interface {
		Red() (float32, error)
		Blue() (float32, error)
	}

	// Mover drives the collimator motor controller.
	Mover interface {
		Drive(motor, speed int) error
	}

	// Display receives update notifications; refresh is not our concern.
	Display interface {
		Update()
	}

	// Rebooter performs a hard reset after a short delay that lets the
	// outgoing prompt flush.
	Rebooter interface {
		Reboot()
	}

	// BootStore persists the boot record.
	BootStore interface {
		SaveBootTime(iso string) error
		BootTime() string
	}

	// Prober runs the self-test bus probe.
	Prober interface {
		Probe() error
	}
)

// ProberFunc adapts a function to the Prober contract.
type ProberFunc func() error

func (f ProberFunc) Probe() error { return f() }

// Config is the loop's static configuration.
type Config struct {
	SpecID  int
	Version string

	// RingSize is the receive ring capacity (power of two). Default 256.
	RingSize int
	// TickPeriod is the periodic display tick started by the reboot
	// acknowledgment. Default 1s.
	TickPeriod time.Duration
}

// Deps collects the collaborators. Nil entries make the corresponding
// commands answer with an error prompt rather than panic.
type Deps struct {
	Clock    Clock
	Valves   ValveBank
	Env      Environment
	Vacuum   VacuumGauges
	Mover    Mover
	Display  Display
	Rebooter Rebooter
	Store    BootStore
	Prober   Prober
}

// Controller owns all mutable command-loop state. There are no package
// globals; everything hangs off this value.
type Controller struct {
	cfg  Config
	fr   proto.Framer
	deps Deps
	w    io.Writer

	rx   *ring.Ring
	line []byte

	stack [proto.StackSize]proto.Command
	slot  int

	awaitingAck bool
	bootTime    string

	tick  *time.Ticker
	tickC <-chan time.Time
}

// New creates a controller writing its sentences and prompts to w.
func New(cfg Config, w io.Writer, deps Deps) *Controller {
	if cfg.RingSize <= 0 {
		cfg.RingSize = 256
	}
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = time.Second
	}
	return &Controller{
		cfg:         cfg,
		fr:          proto.Framer{SpecID: cfg.SpecID},
		deps:        deps,
		w:           w,
		rx:          ring.New(cfg.RingSize),
		line:        make([]byte, cfg.RingSize),
		awaitingAck: true,
	}
}

// Ring is the receive ring the ingest worker feeds.
func (c *Controller) Ring() *ring.Ring { return c.rx }

// Run processes lines until ctx is cancelled. All dispatching and bus I/O
// happens on this goroutine.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if c.tick != nil {
			c.tick.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.rx.Lines():
			c.Pump()
		case <-c.tickC: // nil until the reboot handshake completes
			if c.deps.Display != nil {
				c.deps.Display.Update()
			}
		}
	}
}

// Pump drains and processes every complete line currently buffered. Exposed
// so tests can drive the loop synchronously.
func (c *Controller) Pump() {
	for {
		n, ok := c.rx.ReadLine(c.line)
		if !ok {
			return
		}
		c.process(c.line[:n])
	}
}

// process handles one received line end to end: handshake gate, echo, parse,
// dispatch, stack advance, prompt. Exactly one prompt (or ERR+prompt pair)
// leaves per line.
func (c *Controller) process(line []byte) {
	raw := string(line)

	if c.awaitingAck {
		c.handshake(raw)
		return
	}

	c.emit(c.fr.Echo(raw))

	if len(raw) == 0 { // a bare terminator is not an error
		c.prompt(proto.PromptOK)
		return
	}

	cmd := &c.stack[c.slot]
	proto.ParseInto(cmd, line)

	if cmd.Verb == proto.VerbReboot {
		c.prompt(proto.PromptOK)
		c.reboot()
		return
	}

	p := c.dispatch(cmd)
	c.slot = (c.slot + 1) % proto.StackSize
	c.prompt(p)
}

// handshake gates everything until the reboot acknowledgment arrives. Lines
// rejected here are never echoed and never dispatched.
func (c *Controller) handshake(raw string) {
	switch {
	case raw == "!":
		c.postBootInit()
		c.awaitingAck = false
		c.prompt(proto.PromptOK)
	case len(raw) > 0 && raw[0] == '!':
		// "!" with trailing characters is a forced reboot request.
		c.reboot()
	default:
		c.prompt(proto.PromptExclaim)
	}
}

// postBootInit runs once, on the reboot acknowledgment: latch the boot time,
// persist it, start the periodic display tick.
func (c *Controller) postBootInit() {
	if c.deps.Clock != nil {
		if iso, err := c.deps.Clock.Time(); err == nil {
			c.bootTime = iso
			if c.deps.Store != nil {
				_ = c.deps.Store.SaveBootTime(iso)
			}
		}
	}
	c.tick = time.NewTicker(c.cfg.TickPeriod)
	c.tickC = c.tick.C
	if c.deps.Display != nil {
		c.deps.Display.Update()
	}
}

func (c *Controller) reboot() {
	if c.deps.Rebooter != nil {
		c.deps.Rebooter.Reboot()
	}
}

// Correlate finds the most recent stacked command carrying id. Slots are
// overwritten in place as the stack wraps, so an id is recoverable only until
// StackSize further commands have been processed.
func (c *Controller) Correlate(id string) (proto.Command, bool) {
	if id == "" {
		return proto.Command{}, false
	}
	for i := 1; i <= proto.StackSize; i++ {
		n := (c.slot - i + proto.StackSize) % proto.StackSize
		if c.stack[n].ID == id {
			return c.stack[n], true
		}
	}
	return proto.Command{}, false
}

// CommandAt returns the stack slot at index i.
func (c *Controller) CommandAt(i int) proto.Command {
	return c.stack[i%proto.StackSize]
}

func (c *Controller) emit(s string) {
	_, _ = io.WriteString(c.w, s)
}

func (c *Controller) prompt(p proto.Prompt) {
	c.emit(c.fr.PromptString(p))
}
