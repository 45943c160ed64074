package auphonic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"podopt/internal/services"
)

// newTransferClient builds the client used for audio uploads and downloads.
// It has no overall deadline; connection setup and the wait for response
// headers are bounded by timeout and the body by a stallGuard.
func newTransferClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = 10 * time.Second
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}

var errTransferStalled = errors.New("transfer stalled")

// stallGuard cancels a transfer once no bytes have moved for idle.
type stallGuard struct {
	idle   time.Duration
	timer  *time.Timer
	ctx    context.Context
	cancel context.CancelCauseFunc
	once   sync.Once
}

func newStallGuard(parent context.Context, idle time.Duration) *stallGuard {
	ctx, cancel := context.WithCancelCause(parent)
	g := &stallGuard{idle: idle, ctx: ctx, cancel: cancel}
	g.timer = time.AfterFunc(idle, func() {
		cancel(fmt.Errorf("%w: %w: no progress for %v", services.ErrTimeout, errTransferStalled, idle))
	})
	return g
}

func (g *stallGuard) Context() context.Context { return g.ctx }

func (g *stallGuard) touch() { g.timer.Reset(g.idle) }

func (g *stallGuard) pause() { g.timer.Stop() }

func (g *stallGuard) release() {
	g.once.Do(func() {
		g.timer.Stop()
		g.cancel(nil)
	})
}

// explain prefers the stall cause over the generic cancellation error.
func (g *stallGuard) explain(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	if cause := context.Cause(g.ctx); errors.Is(cause, errTransferStalled) {
		return fmt.Errorf("%w (%v)", cause, err)
	}
	return err
}

// progressReader restarts the guard on every read that moves bytes.
type progressReader struct {
	r     io.Reader
	guard *stallGuard
	// pauseAtEOF hands the remaining wait to ResponseHeaderTimeout once an
	// upload body is fully read.
	pauseAtEOF bool
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.guard.touch()
	}
	if errors.Is(err, io.EOF) && p.pauseAtEOF {
		p.guard.pause()
	}
	return n, p.guard.explain(err)
}

// guardedBody is a download body that stays cancellable on stalls until closed.
type guardedBody struct {
	progressReader
	body io.Closer
}

func (b *guardedBody) Close() error {
	err := b.body.Close()
	b.guard.release()
	return err
}
