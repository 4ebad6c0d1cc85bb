// Command specmechsh is an interactive console for a running mechanism
// controller. It opens the controller's serial line, prints everything the
// controller sends, and turns friendly commands into protocol lines.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/abiosoft/ishell"

	"specmech-go/serialport"
)

var (
	device = flag.String("dev", "/dev/ttyUSB0", "controller serial device")
	baud   = flag.Int("baud", 115200, "serial baud rate")
)

const portKey = "$port"

func portFrom(c *ishell.Context) io.Writer {
	return c.Get(portKey).(io.Writer)
}

// send writes one terminated protocol line.
func send(c *ishell.Context, line string) {
	if _, err := io.WriteString(portFrom(c), line+"\r"); err != nil {
		c.Err(err)
	}
}

// objectArg maps a mechanism name to its object letter.
func objectArg(args []string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	switch args[0] {
	case "shutter", "s":
		return "s", true
	case "left", "l":
		return "l", true
	case "right", "r":
		return "r", true
	case "both", "b":
		return "b", true
	}
	return "", false
}

// withID appends ";id" when the caller supplied one.
func withID(line string, args []string) string {
	if len(args) > 0 {
		return line + ";" + args[len(args)-1]
	}
	return line
}

var reportLetters = map[string]string{
	"boot":        "B",
	"environment": "e",
	"env":         "e",
	"time":        "t",
	"vacuum":      "v",
	"version":     "V",
}

func main() {
	flag.Parse()

	port, err := serialport.Open(serialport.Config{Device: *device, Baud: *baud})
	if err != nil {
		log.Fatalf("open %s: %v", *device, err)
	}

	shell := ishell.New()
	shell.SetPrompt(fmt.Sprintf("%s> ", *device))
	shell.Set(portKey, port)

	// Everything the controller says goes straight to the screen.
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := port.Read(buf)
			if n > 0 {
				os.Stdout.Write(buf[:n])
			}
			if err != nil {
				shell.Println("link closed:", err)
				return
			}
		}
	}()

	shell.AddCmd(&ishell.Cmd{
		Name: "ack",
		Help: "acknowledge the reboot handshake",
		Func: func(c *ishell.Context) { send(c, "!") },
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "open",
		Help: "shutter|left|right|both [id]",
		Func: func(c *ishell.Context) {
			obj, ok := objectArg(c.Args)
			if !ok {
				c.Err(fmt.Errorf("usage: open shutter|left|right|both [id]"))
				return
			}
			send(c, withID("o"+obj, c.Args[1:]))
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "close",
		Help: "shutter|left|right|both [id]",
		Func: func(c *ishell.Context) {
			obj, ok := objectArg(c.Args)
			if !ok {
				c.Err(fmt.Errorf("usage: close shutter|left|right|both [id]"))
				return
			}
			send(c, withID("c"+obj, c.Args[1:]))
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "report",
		Help: "boot|env|time|vacuum|version [id]",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("usage: report boot|env|time|vacuum|version [id]"))
				return
			}
			letter, ok := reportLetters[c.Args[0]]
			if !ok {
				c.Err(fmt.Errorf("unknown report %q", c.Args[0]))
				return
			}
			send(c, withID("r"+letter, c.Args[1:]))
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "settime",
		Help: "YYYY-MM-DDThh:mm:ss",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: settime YYYY-MM-DDThh:mm:ss"))
				return
			}
			send(c, "st"+c.Args[0])
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "move",
		Help: "a|b SPEED (0..127, 64 stops)",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 || (c.Args[0] != "a" && c.Args[0] != "b") {
				c.Err(fmt.Errorf("usage: move a|b SPEED"))
				return
			}
			send(c, "m"+c.Args[0]+c.Args[1])
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "test",
		Help: "run the bus self-test",
		Func: func(c *ishell.Context) { send(c, "t") },
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "reboot",
		Help: "reboot the controller",
		Func: func(c *ishell.Context) { send(c, "R") },
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "raw",
		Help: "send a protocol line verbatim",
		Func: func(c *ishell.Context) {
			send(c, strings.Join(c.Args, " "))
		},
	})

	shell.Run()
}
