package maincmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/mna/mainer"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/momentics/hioload-thread/api"
)

func (c *Cmd) Spawn(ctx context.Context, stdio mainer.Stdio, args []string) error {
	rt, err := c.runtime()
	if err != nil {
		return printError(stdio, err)
	}

	params := api.DefaultThreadParams()
	if c.Stack > 0 {
		params.StackSize = uintptr(c.Stack)
	}
	sleep := api.FromDuration(c.Duration)
	entry := func(arg any) any {
		rt.Sleep(sleep)
		rt.TestCancel()
		return arg
	}

	ids := make([]api.ThreadID, 0, c.Count)
	for i := 0; i < c.Count; i++ {
		id, err := rt.CreateWithParams(&params, entry, i)
		if err != nil {
			err = fmt.Errorf("create thread %d: %w", i, err)
			for _, id := range ids {
				_ = rt.Cancel(id)
				_, _ = rt.Join(id)
			}
			return printError(stdio, err)
		}
		ids = append(ids, id)
	}

	stop := context.AfterFunc(ctx, func() {
		for _, id := range ids {
			_ = rt.Cancel(id)
		}
	})
	defer stop()

	var errs []error
	for _, id := range ids {
		res, err := rt.Join(id)
		if err != nil {
			errs = append(errs, fmt.Errorf("join %s: %w", id, err))
			continue
		}
		fmt.Fprintf(stdio.Stdout, "%s -> %v\n", id, res)
	}

	stats := rt.Stats()
	keys := maps.Keys(stats)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(stdio.Stdout, "%s=%d\n", k, stats[k])
	}
	return printError(stdio, errors.Join(errs...))
}
