// Package listener implements the collecting side of the sample exchange.
//
// A Listener owns one ZeroMQ REP socket. Collect runs a fixed number of
// strictly alternating receive/reply exchanges, storing each decoded sample
// into a preallocated buffer at the column of its arrival index. The buffer
// is local to Collect and is handed back frozen once the last reply has been
// sent. Any undecodable message ends the run without a reply.
package listener

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-zeromq/zmq4"
	"github.com/xtxerr/trackrec/config"
	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/logging"
	"github.com/xtxerr/trackrec/internal/storage/types"
	"github.com/xtxerr/trackrec/internal/wire"
)

// Socket is the part of a REP socket the listener uses. zmq4.Socket
// satisfies it.
type Socket interface {
	Recv() (zmq4.Msg, error)
	Send(msg zmq4.Msg) error
	Close() error
}

// Options configures a Listener.
type Options struct {
	// Dim is the number of values every sample must carry.
	// Default: 2
	Dim int

	// ProgressEvery logs progress every N samples; 0 disables it.
	// Default: 500
	ProgressEvery int
}

// DefaultOptions returns default listener options.
func DefaultOptions() Options {
	return Options{
		Dim:           config.DefaultDim,
		ProgressEvery: config.DefaultProgressEvery,
	}
}

// Stats holds exchange counters.
type Stats struct {
	Received int64
	Acked    int64
}

// Listener serves one collection run on a reply socket.
// It is not safe for concurrent use.
type Listener struct {
	sock     Socket
	endpoint string
	opts     Options
	stats    Stats
	log      *slog.Logger
}

// New wraps an already bound socket.
func New(sock Socket, opts Options) *Listener {
	if opts.Dim <= 0 {
		opts.Dim = config.DefaultDim
	}
	if opts.ProgressEvery < 0 {
		opts.ProgressEvery = 0
	}
	return &Listener{
		sock: sock,
		opts: opts,
		log:  logging.Component("listener"),
	}
}

// Listen creates a REP socket bound to endpoint. The socket is closed when
// ctx is cancelled or Close is called.
func Listen(ctx context.Context, endpoint string, opts Options) (*Listener, error) {
	sock := zmq4.NewRep(ctx)
	if err := sock.Listen(endpoint); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listen %s: %w", endpoint, err)
	}

	l := New(sock, opts)
	l.endpoint = endpoint
	l.log = l.log.With("endpoint", endpoint)
	l.log.Info("reply socket bound")
	return l, nil
}

// Collect performs exactly steps receive/reply exchanges and returns the
// (Dim, steps) matrix whose column i holds the i-th received sample.
//
// A malformed message aborts the run before its reply is sent; the error
// wraps one of the errors.IsMalformed sentinels. Transport errors and
// context cancellation also abort the run. No partial matrix is returned.
func (l *Listener) Collect(ctx context.Context, steps int) (*types.Matrix, error) {
	if steps <= 0 {
		return nil, errors.NewInvalidValue("steps", steps, "must be positive")
	}

	buf, err := types.NewBuffer(l.opts.Dim, steps)
	if err != nil {
		return nil, err
	}

	log := l.log.With("run_id", logging.RunID(ctx))
	log.Info("collecting", "steps", steps, "dim", l.opts.Dim)

	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		msg, err := l.sock.Recv()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("step %d: %w", step, ctxErr)
			}
			return nil, fmt.Errorf("step %d: recv: %w", step, err)
		}
		l.stats.Received++

		values, err := wire.DecodeSample(payloadOf(msg), l.opts.Dim)
		if err != nil {
			log.Error("undecodable sample", "step", step, "error", err)
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		if err := buf.Set(step, values); err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		if err := l.sock.Send(zmq4.NewMsg(wire.Ack())); err != nil {
			return nil, fmt.Errorf("step %d: send ack: %w", step, err)
		}
		l.stats.Acked++

		if l.opts.ProgressEvery > 0 && (step+1)%l.opts.ProgressEvery == 0 {
			log.Debug("progress", "received", step+1, "remaining", steps-step-1)
		}
	}

	log.Info("collection complete", "samples", buf.Written())
	return buf.Freeze(), nil
}

// Stats returns exchange counters.
func (l *Listener) Stats() Stats {
	return l.stats
}

// Endpoint returns the bound endpoint, or "" for a wrapped socket.
func (l *Listener) Endpoint() string {
	return l.endpoint
}

// Close releases the socket.
func (l *Listener) Close() error {
	return l.sock.Close()
}

// payloadOf returns the first frame of msg; the producer sends single-frame
// messages.
func payloadOf(msg zmq4.Msg) []byte {
	if len(msg.Frames) == 0 {
		return nil
	}
	return msg.Frames[0]
}
