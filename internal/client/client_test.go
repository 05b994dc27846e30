package client

import (
	"context"
	"testing"
	"time"

	"github.com/xtxerr/trackrec/internal/errors"
	tu "github.com/xtxerr/trackrec/internal/testing"
)

func TestSendReceivesAck(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := tu.StartRep(t, ctx, "inproc://client-ack", tu.Ack)

	c, err := Dial(ctx, "inproc://client-ack", 5*time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if err := c.Send(ctx, 1, 2); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := c.Send(ctx, 3.5, -4); err != nil {
		t.Fatalf("Send: %v", err)
	}

	want := []string{"[1,2]", "[3.5,-4]"}
	for i, w := range want {
		p, err := srv.Next(time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if string(p) != w {
			t.Errorf("request %d = %q, want %q", i, p, w)
		}
	}
	if c.Sent() != 2 {
		t.Errorf("Sent = %d, want 2", c.Sent())
	}
}

func TestSendUnexpectedAck(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tu.StartRep(t, ctx, "inproc://client-nack", func([]byte) []byte { return []byte("no") })

	c, err := Dial(ctx, "inproc://client-nack", 5*time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if err := c.Send(ctx, 1, 2); !errors.Is(err, errors.ErrUnexpectedAck) {
		t.Errorf("expected ErrUnexpectedAck, got %v", err)
	}
}

func TestSendRawTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The REP side receives but never answers.
	tu.StartRep(t, ctx, "inproc://client-silent", nil)

	c, err := Dial(ctx, "inproc://client-silent", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	_, err = c.SendRaw(ctx, []byte("[1]"))
	if !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestSendRejectsEmptySample(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := tu.StartRep(t, ctx, "inproc://client-empty", tu.Ack)

	c, err := Dial(ctx, "inproc://client-empty", time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if err := c.Send(ctx); !errors.Is(err, errors.ErrWrongArity) {
		t.Errorf("expected ErrWrongArity, got %v", err)
	}
	if c.Sent() != 0 || srv.Count() != 0 {
		t.Errorf("nothing should be sent, got %d", c.Sent())
	}
}
