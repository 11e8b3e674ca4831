package provider

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
)

// Console targets.
const (
	TargetLog    = "log"
	TargetStdout = "stdout"
	TargetStderr = "stderr"
)

var keyTarget = []string{"target", "to"}

// Console errors.
var (
	// ErrConsoleTarget indicates an unknown console target.
	ErrConsoleTarget = fault.New(fault.KindConfiguration, 104, "console: invalid target")

	// ErrConsoleNotOpen indicates Write was called before Open.
	ErrConsoleNotOpen = fault.New(fault.KindPublish, 105, "console: output not opened")
)

// ConsoleOutput prints payloads instead of sending them anywhere. It is
// meant for bench setups and for trying a sensor configuration.
//
// Options: target{target,to} = log (default), stdout or stderr.
type ConsoleOutput struct {
	log Logger

	mu     sync.Mutex
	target string
	out    io.Writer
	open   bool
}

// NewConsoleOutput creates a console output writing through log.
func NewConsoleOutput(log Logger) *ConsoleOutput {
	if log == nil {
		log = noopLogger{}
	}
	return &ConsoleOutput{log: log, target: TargetLog}
}

// Init selects the target.
func (c *ConsoleOutput) Init(connString string) error {
	conn, err := config.ParseConnString(connString)
	if err != nil {
		return ErrConsoleTarget.With(err)
	}

	target := conn.String(keyTarget, TargetLog)
	var out io.Writer
	switch target {
	case TargetLog:
	case TargetStdout:
		out = os.Stdout
	case TargetStderr:
		out = os.Stderr
	default:
		return ErrConsoleTarget.Withf("%q", target)
	}

	c.mu.Lock()
	c.target = target
	c.out = out
	c.mu.Unlock()
	return nil
}

// AttachStopSignal is a no-op; the console never blocks.
func (c *ConsoleOutput) AttachStopSignal(*lifecycle.StopSignal) {}

// Open marks the output ready.
func (c *ConsoleOutput) Open() error {
	c.mu.Lock()
	c.open = true
	c.mu.Unlock()
	return nil
}

// Close marks the output closed. It is idempotent.
func (c *ConsoleOutput) Close() error {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
	return nil
}

// Write prints one payload per line.
func (c *ConsoleOutput) Write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return ErrConsoleNotOpen
	}
	if c.out == nil {
		c.log.Info("payload", "payload", string(payload))
		return nil
	}
	if _, err := fmt.Fprintln(c.out, string(payload)); err != nil {
		return fault.Wrap(fault.KindPublish, 106, "console: write failed", err)
	}
	return nil
}
