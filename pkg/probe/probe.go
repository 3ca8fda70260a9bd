// Package probe decides terminal capabilities from query replies. It sits
// on top of package xtquery: each probe sends one query, interprets the
// reply, and treats a terminal that does not answer as lacking the feature.
package probe

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/xterm-query/pkg/xtquery"
)

// DefaultTimeout is the per-probe timeout used when none is given. Local
// terminals answer within a few milliseconds.
const DefaultTimeout = 50 * time.Millisecond

// Probe names accepted by Detect.
const (
	NameKitty      = "kitty"
	NameBackground = "background"
	NameForeground = "foreground"
	NameDA1        = "da1"
	NameVersion    = "version"
)

// Names lists every probe in the order Detect runs them.
var Names = []string{NameKitty, NameBackground, NameForeground, NameDA1, NameVersion}

// Querier is the part of *xtquery.Engine a Prober uses.
type Querier interface {
	Query(query string, timeout time.Duration) (string, error)
	QueryOSC(query string, timeout time.Duration) (string, error)
}

// Prober runs probes against one terminal. Its methods are safe for
// concurrent use; queries are sent one at a time.
type Prober struct {
	q       Querier
	timeout time.Duration
	logger  *slog.Logger

	mu sync.Mutex
}

// New returns a Prober. A zero timeout selects DefaultTimeout and a nil
// logger discards.
func New(q Querier, timeout time.Duration, logger *slog.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Prober{q: q, timeout: timeout, logger: logger}
}

// Absent reports whether err means the terminal did not answer: it timed
// out, or answered only the status-report fence.
func Absent(err error) bool {
	return errors.Is(err, xtquery.ErrTimeout) || errors.Is(err, xtquery.ErrNotOSCResponse)
}

func (p *Prober) query(name, seq string) (string, error) {
	return p.run(name, seq, p.q.Query)
}

func (p *Prober) queryOSC(name, seq string) (string, error) {
	return p.run(name, seq, p.q.QueryOSC)
}

func (p *Prober) run(name, seq string, fn func(string, time.Duration) (string, error)) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	reply, err := fn(seq, p.timeout)
	p.logger.Debug("probe finished",
		"probe", name,
		"elapsed", time.Since(start),
		"absent", Absent(err),
		"error", err,
	)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", name, err)
	}
	return reply, nil
}
