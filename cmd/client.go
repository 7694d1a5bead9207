package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ptimer/ptimer/internal/config"
	"github.com/ptimer/ptimer/pkg/credman"
	"github.com/ptimer/ptimer/pkg/timercli"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

// callTimeout bounds a single request from a one-shot command.
const callTimeout = 10 * time.Second

// newClient connects to the daemon named by the local configuration,
// starting one in the background when none is listening.
var newClient = func() (*timercli.Client, error) {
	s, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := timercli.EnsureDaemon(s.ListenAddr); err != nil {
		return nil, err
	}
	token := s.RPCSecret
	if token == "" {
		token, err = credman.NewTokenManager(s.ConfigDir, nil).Token()
		if err != nil {
			return nil, fmt.Errorf("%w (has 'ptimer daemon' been started?)", err)
		}
	}
	c := timercli.NewClient(s.ListenAddr, token)
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	c.CheckVersionMismatch(ctx, os.Stderr, buildArgs.Version)
	return c, nil
}

// resolveID expands arg to the id of the one timer it names: an exact id or
// a unique id prefix.
func resolveID(ctx context.Context, c *timercli.Client, arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("missing timer id")
	}
	l, err := c.List(ctx, "")
	if err != nil {
		return "", err
	}
	var matches []timerlib.Timer
	for _, t := range l.Timers {
		if t.ID == arg {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no timer matches %q", arg)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("%q is ambiguous: matches %d timers", arg, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
