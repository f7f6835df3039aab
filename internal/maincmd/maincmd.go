// Package maincmd implements the hioload-thread diagnostic command.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mna/mainer"

	"github.com/momentics/hioload-thread/adapters"
	"github.com/momentics/hioload-thread/control"
	"github.com/momentics/hioload-thread/facade"
)

const binName = "hioload-thread"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command>
       %[1]s -h|--help
       %[1]s -v|--version

Diagnostic tool for the %[1]s thread lifecycle core.

The <command> can be one of:
       caps                      Print the capabilities of the selected
                                 backend.
       spawn                     Create threads that sleep and report
                                 their handle, join them and print the
                                 lifecycle counters.
       name                      Create a named thread and print the
                                 name as seen from inside and outside.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -c --config <path>        Load the YAML configuration at path.
       --backend <name>          Backend to use: default or win32
                                 (default: default).

Valid flag options for the <spawn> command are:
       -n --count <n>            Number of threads (default: 4).
       -d --duration <dur>       Time each thread sleeps (default: 10ms).
       --stack <bytes>           Requested stack size, 0 for the
                                 platform default.

Valid flag options for the <name> command are:
       --thread-name <name>      Name given to the thread (default:
                                 hioload-worker).
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool   `flag:"h,help"`
	Version bool   `flag:"v,version"`
	Config  string `flag:"c,config"`
	Backend string `flag:"backend"`

	Count    int           `flag:"n,count"`
	Duration time.Duration `flag:"d,duration"`
	Stack    int           `flag:"stack"`

	ThreadName string `flag:"thread-name"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}
	if len(c.args) > 1 {
		return fmt.Errorf("%s: unexpected argument: %s", cmdName, c.args[1])
	}

	switch c.Backend {
	case "", "default", "win32":
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}

	for _, fl := range []string{"n", "count", "d", "duration", "stack"} {
		if c.flags[fl] && cmdName != "spawn" {
			return fmt.Errorf("%s: invalid flag '%s'", cmdName, fl)
		}
	}
	if c.flags["thread-name"] && cmdName != "name" {
		return fmt.Errorf("%s: invalid flag 'thread-name'", cmdName)
	}
	if c.Count < 0 {
		return fmt.Errorf("%s: count must be >= 0", cmdName)
	}
	if c.Stack < 0 {
		return fmt.Errorf("%s: stack must be >= 0", cmdName)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%s: duration must be >= 0", cmdName)
	}
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	c.setDefaults()

	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: "HIOLOAD_THREAD_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its errors, just return with an error code
		return mainer.Failure
	}
	return mainer.Success
}

func (c *Cmd) setDefaults() {
	if c.Count == 0 {
		c.Count = 4
	}
	if c.Duration == 0 {
		c.Duration = 10 * time.Millisecond
	}
	if c.ThreadName == "" {
		c.ThreadName = "hioload-worker"
	}
}

// runtime builds the dispatch table the commands work through.
func (c *Cmd) runtime() (*facade.Runtime, error) {
	cfg, err := control.LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Backend != "win32" {
		return facade.New(cfg)
	}
	opts := adapters.Options{Config: control.NewConfigStore(cfg)}.WithDefaults()
	return facade.NewWithBackend(adapters.NewWin32(opts), opts), nil
}

// valid commands are those that take a mainer.Stdio and a slice of strings as
// input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}

		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
