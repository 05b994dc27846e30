// Package testing provides test utilities for the trackrec packages.
//
// Collector and producer tests run both ends of a ZeroMQ exchange in one
// process. The helpers here keep the peer goroutines off t.Fatal, which only
// exits the calling goroutine.
package testing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-zeromq/zmq4"
)

// =============================================================================
// Error Channel Pattern
// =============================================================================

// GoroutineTest runs functions in goroutines and reports their errors on
// the test goroutine.
//
// Example usage:
//
//	gt := testing.NewGoroutineTest(t)
//	gt.Go(func() error {
//	    _, err := l.Collect(gt.Context(), 3)
//	    return err
//	})
//	// drive the producer
//	gt.Wait()
type GoroutineTest struct {
	t      *testing.T
	wg     sync.WaitGroup
	errors chan error
	ctx    context.Context
	cancel context.CancelFunc
}

// NewGoroutineTest creates a GoroutineTest with a 10 second deadline.
func NewGoroutineTest(t *testing.T) *GoroutineTest {
	return NewGoroutineTestWithTimeout(t, 10*time.Second)
}

// NewGoroutineTestWithTimeout creates a GoroutineTest with a custom deadline.
func NewGoroutineTestWithTimeout(t *testing.T, timeout time.Duration) *GoroutineTest {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return &GoroutineTest{
		t:      t,
		errors: make(chan error, 100),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Go runs fn in a goroutine. A non-nil return fails the test in Wait.
func (gt *GoroutineTest) Go(fn func() error) {
	gt.wg.Add(1)
	go func() {
		defer gt.wg.Done()
		if err := fn(); err != nil {
			gt.errors <- err
		}
	}()
}

// Wait blocks until every goroutine returned or the deadline passed, then
// reports collected errors.
func (gt *GoroutineTest) Wait() {
	gt.t.Helper()

	done := make(chan struct{})
	go func() {
		gt.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-gt.ctx.Done():
		gt.t.Fatalf("goroutines did not finish: %v", gt.ctx.Err())
	}

	close(gt.errors)
	for err := range gt.errors {
		gt.t.Error(err)
	}
}

// Context returns the deadline-bound context shared by the goroutines.
func (gt *GoroutineTest) Context() context.Context {
	return gt.ctx
}

// Cancel cancels the shared context.
func (gt *GoroutineTest) Cancel() {
	gt.cancel()
}

// =============================================================================
// Reply peer
// =============================================================================

// RepServer is an in-process REP peer standing in for a collector.
type RepServer struct {
	sock     zmq4.Socket
	requests chan []byte

	mu    sync.Mutex
	count int
}

// StartRep binds a REP socket at endpoint. Every request is recorded and
// answered with reply(request); a nil reply func records without answering,
// leaving the peer stuck like a collector that never acks.
func StartRep(t *testing.T, ctx context.Context, endpoint string, reply func([]byte) []byte) *RepServer {
	t.Helper()

	sock := zmq4.NewRep(ctx)
	if err := sock.Listen(endpoint); err != nil {
		t.Fatalf("listen %s: %v", endpoint, err)
	}
	t.Cleanup(func() { sock.Close() })

	s := &RepServer{
		sock:     sock,
		requests: make(chan []byte, 256),
	}
	go s.serve(reply)
	return s
}

// Ack replies "ok" to every request.
func Ack([]byte) []byte { return []byte("ok") }

func (s *RepServer) serve(reply func([]byte) []byte) {
	for {
		msg, err := s.sock.Recv()
		if err != nil {
			return
		}
		var payload []byte
		if len(msg.Frames) > 0 {
			payload = msg.Frames[0]
		}

		s.mu.Lock()
		s.count++
		s.mu.Unlock()
		s.requests <- payload

		if reply == nil {
			return
		}
		if err := s.sock.Send(zmq4.NewMsg(reply(payload))); err != nil {
			return
		}
	}
}

// Next returns the next recorded request, or an error after timeout.
func (s *RepServer) Next(timeout time.Duration) ([]byte, error) {
	select {
	case p := <-s.requests:
		return p, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no request within %s", timeout)
	}
}

// Pending returns the number of recorded requests not yet taken by Next.
func (s *RepServer) Pending() int {
	return len(s.requests)
}

// Count returns the number of requests received.
func (s *RepServer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// =============================================================================
// Timing helpers
// =============================================================================

// WithTimeout runs fn and returns an error if it does not finish in time.
func WithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout after %v", timeout)
	}
}

// Eventually polls condition until it holds or timeout passes.
func Eventually(timeout, interval time.Duration, condition func() bool) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("condition not met within %v", timeout)
}
