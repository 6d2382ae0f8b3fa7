// Package interactive provides the interactive command-line interface
// for connwatch.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/chzyer/readline"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// Info describes the running monitor for the status command.
type Info struct {
	Transport string
	Adapter   string
	SessionID string
	Started   time.Time
}

// Console handles interactive mode for connwatch.
type Console struct {
	registry  *monitor.Registry
	info      Info
	rl        *readline.Instance
	closeOnce sync.Once
	now       func() time.Time
}

// New creates a console reading commands from the terminal.
func New(registry *monitor.Registry, info Info) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "connwatch> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(registry, info)
	c.rl = rl
	return c, nil
}

func newConsole(registry *monitor.Registry, info Info) *Console {
	if info.Started.IsZero() {
		info.Started = time.Now()
	}
	return &Console{
		registry: registry,
		info:     info,
		now:      time.Now,
	}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for event output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop. It returns when ctx is done or
// the user quits, calling cancel in the latter case.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.shutdown()

	// Readline blocks on the terminal; closing it unblocks the loop.
	stop := context.AfterFunc(ctx, c.shutdown)
	defer stop()

	c.printHelp(c.rl.Stdout())

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if ctx.Err() == nil {
				fmt.Fprintln(c.rl.Stdout(), "Exiting...")
				cancel()
			}
			return
		}

		if c.Execute(c.rl.Stdout(), line) {
			cancel()
			return
		}
	}
}

func (c *Console) shutdown() {
	c.closeOnce.Do(func() { _ = c.rl.Close() })
}

// Execute runs a single command line, writing its output to w. It reports
// whether the user asked to quit.
func (c *Console) Execute(w io.Writer, line string) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp(w)

	case "list", "ls", "l":
		c.cmdList(w, args)

	case "status", "s":
		c.cmdStatus(w)

	case "show":
		c.cmdShow(w, args)

	case "quit", "exit", "q":
		fmt.Fprintln(w, "Exiting...")
		return true

	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp(w io.Writer) {
	fmt.Fprint(w, `
Commands:
  list [connected]   List devices seen this session (alias: ls, l)
  show <id>          Show details for one device
  status             Show monitor status (alias: s)
  help               Show this help (alias: ?)
  quit               Stop monitoring and exit (alias: exit, q)

`)
}

func (c *Console) cmdList(w io.Writer, args []string) {
	connectedOnly := len(args) > 0 && strings.EqualFold(args[0], "connected")

	var devices []monitor.DeviceStatus
	for _, d := range c.registry.List() {
		if connectedOnly && !d.Connected {
			continue
		}
		devices = append(devices, d)
	}

	if len(devices) == 0 {
		fmt.Fprintln(w, "No devices.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATE\tWATCHED\tLAST SEEN")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			d.ID, orDash(d.Name), state(d), yesNo(d.Subscribed), d.LastSeen.Format("15:04:05"))
	}
	tw.Flush()
}

func (c *Console) cmdShow(w io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: show <id>")
		return
	}
	d, ok := c.registry.Get(monitor.EntityID(args[0]))
	if !ok {
		fmt.Fprintf(w, "Device %s not seen\n", args[0])
		return
	}

	fmt.Fprintf(w, "ID:            %s\n", d.ID)
	fmt.Fprintf(w, "Name:          %s\n", orDash(d.Name))
	fmt.Fprintf(w, "State:         %s\n", state(d))
	fmt.Fprintf(w, "Watched:       %s\n", yesNo(d.Subscribed))
	fmt.Fprintf(w, "First seen:    %s\n", d.FirstSeen.Format(time.RFC3339))
	fmt.Fprintf(w, "Last seen:     %s\n", d.LastSeen.Format(time.RFC3339))
	fmt.Fprintf(w, "Notifications: %d\n", d.Notifications)
}

func (c *Console) cmdStatus(w io.Writer) {
	fmt.Fprintf(w, "Transport:  %s\n", c.info.Transport)
	fmt.Fprintf(w, "Adapter:    %s\n", c.info.Adapter)
	if c.info.SessionID != "" {
		fmt.Fprintf(w, "Session:    %s\n", c.info.SessionID)
	}
	fmt.Fprintf(w, "Uptime:     %s\n", c.now().Sub(c.info.Started).Truncate(time.Second))
	fmt.Fprintf(w, "Devices:    %d seen, %d connected, %d watched\n",
		c.registry.Count(), c.registry.ConnectedCount(), c.registry.SubscribedCount())
}

func state(d monitor.DeviceStatus) string {
	switch {
	case d.Removed:
		return "removed"
	case d.Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
