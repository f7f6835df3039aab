package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/momentics/hioload-thread/api"
)

func (c *Cmd) Caps(ctx context.Context, stdio mainer.Stdio, args []string) error {
	rt, err := c.runtime()
	if err != nil {
		return printError(stdio, err)
	}
	caps := rt.Capabilities()
	fmt.Fprintf(stdio.Stdout, "backend:         %s\n", caps.Backend)
	fmt.Fprintf(stdio.Stdout, "cancel:          %s\n", caps.Cancel)
	fmt.Fprintf(stdio.Stdout, "sleep unit:      %s\n", caps.NativeSleepUnit.Duration())
	fmt.Fprintf(stdio.Stdout, "sleep max:       %d units\n", caps.NativeSleepMax)
	fmt.Fprintf(stdio.Stdout, "thread names:    %t\n", caps.ThreadNames)
	fmt.Fprintf(stdio.Stdout, "exit code only:  %t\n", caps.ExitCodeOnly)

	size, conflict, err := api.DefaultStackSize()
	fmt.Fprintf(stdio.Stdout, "default stack:   %d", size)
	switch {
	case err != nil:
		fmt.Fprint(stdio.Stdout, " (link-time override ignored)")
	case conflict:
		fmt.Fprint(stdio.Stdout, " (link-time override)")
	}
	fmt.Fprintln(stdio.Stdout)

	state := rt.DumpState()
	keys := maps.Keys(state)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(stdio.Stdout, "%-16s %v\n", k+":", state[k])
	}
	return nil
}
