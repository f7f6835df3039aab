package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/momentics/hioload-thread/api"
)

func (c *Cmd) Name(ctx context.Context, stdio mainer.Stdio, args []string) error {
	rt, err := c.runtime()
	if err != nil {
		return printError(stdio, err)
	}

	params := api.ThreadParams{Version: api.ThreadParamsCurrentVersion, Name: c.ThreadName}
	started := make(chan struct{})
	release := make(chan struct{})
	id, err := rt.CreateWithParams(&params, func(any) any {
		buf := make([]byte, api.MaxThreadNameLen)
		n, err := rt.Name(api.NoThread, buf)
		close(started)
		<-release
		if err != nil {
			return err
		}
		return string(buf[:n])
	}, nil)
	if err != nil {
		return printError(stdio, err)
	}
	<-started

	buf := make([]byte, api.MaxThreadNameLen)
	n, err := rt.Name(id, buf)
	close(release)
	if err != nil {
		fmt.Fprintf(stdio.Stdout, "outside: %s\n", err)
	} else {
		fmt.Fprintf(stdio.Stdout, "outside: %s\n", buf[:n])
	}

	inside, err := rt.Join(id)
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprintf(stdio.Stdout, "inside:  %v\n", inside)
	return nil
}
