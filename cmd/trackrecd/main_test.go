package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xtxerr/trackrec/internal/client"
	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/listener"
	"github.com/xtxerr/trackrec/internal/storage"
	"github.com/xtxerr/trackrec/internal/storage/types"
	tu "github.com/xtxerr/trackrec/internal/testing"
)

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig(options{cfgPath: filepath.Join(dir, "missing.yaml")})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Steps != 3000 || cfg.Dim != 2 || cfg.Listen != "tcp://*:5555" {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	cfg, err = loadConfig(options{
		cfgPath:  filepath.Join(dir, "missing.yaml"),
		endpoint: "tcp://127.0.0.1:7000",
		steps:    10,
		out:      filepath.Join(dir, "run.parquet"),
	})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Listen != "tcp://127.0.0.1:7000" || cfg.Steps != 10 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Output.Format != "parquet" {
		t.Errorf("format = %q, want parquet from extension", cfg.Output.Format)
	}
}

func TestLoadConfigFileAndValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("steps: 5\noutput:\n  format: gob\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(options{cfgPath: path})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Steps != 5 {
		t.Errorf("steps = %d, want 5", cfg.Steps)
	}

	if _, err := loadConfig(options{cfgPath: path, steps: -1}); !errors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

type closeRecorder struct{ closed int }

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestCleanupReleasesSocketAndPartialOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "data.gob")
	if err := os.WriteFile(out, []byte("complete"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(out+".tmp", []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	sock := &closeRecorder{}
	cleanup(sock, out)()

	if sock.closed != 1 {
		t.Errorf("socket closed %d times, want 1", sock.closed)
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Error("partial output should be removed")
	}
	if data, err := os.ReadFile(out); err != nil || string(data) != "complete" {
		t.Errorf("finished output must be kept, got %q, %v", data, err)
	}
}

func TestRunLeavesSocketToExitHandler(t *testing.T) {
	dir := t.TempDir()
	const endpoint = "inproc://trackrecd-exit-handler"

	gt := tu.NewGoroutineTest(t)
	gt.Go(func() error {
		return run(options{
			cfgPath:  filepath.Join(dir, "missing.yaml"),
			envPath:  filepath.Join(dir, "missing.env"),
			endpoint: endpoint,
			steps:    1,
			out:      filepath.Join(dir, "data.gob"),
		})
	})

	c, err := client.Dial(gt.Context(), endpoint, 5*time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()
	if err := c.Send(gt.Context(), 1, 2); err != nil {
		t.Fatalf("Send: %v", err)
	}
	gt.Wait()

	// run returned, but the endpoint stays bound until the atexit handlers
	// run, so a second bind on it must fail.
	l, err := listener.Listen(context.Background(), endpoint, listener.DefaultOptions())
	if err == nil {
		l.Close()
		t.Error("endpoint was released before process exit")
	}
}

func TestRunCollectsAndPersists(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "data.gob")
	const endpoint = "inproc://trackrecd-run"

	gt := tu.NewGoroutineTest(t)
	gt.Go(func() error {
		return run(options{
			cfgPath:  filepath.Join(dir, "missing.yaml"),
			envPath:  filepath.Join(dir, "missing.env"),
			endpoint: endpoint,
			steps:    3,
			out:      out,
		})
	})

	c, err := client.Dial(gt.Context(), endpoint, 5*time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	for _, s := range [][2]float64{{1, 2}, {3, 4}, {5, 6}} {
		if err := c.Send(gt.Context(), s[0], s[1]); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	gt.Wait()

	m, _, err := storage.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want, _ := types.NewMatrix([][]float64{{1, 3, 5}, {2, 4, 6}})
	if !m.Equal(want) {
		t.Errorf("matrix = %v, want %v", m.Rows, want.Rows)
	}
}

func TestRunMalformedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "data.gob")
	const endpoint = "inproc://trackrecd-malformed"

	done := make(chan error, 1)
	go func() {
		done <- run(options{
			cfgPath:  filepath.Join(dir, "missing.yaml"),
			envPath:  filepath.Join(dir, "missing.env"),
			endpoint: endpoint,
			steps:    3,
			out:      out,
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, endpoint, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if err := c.Send(ctx, 1, 2); err != nil {
		t.Fatalf("Send: %v", err)
	}
	// No reply comes back for a malformed sample.
	if _, err := c.SendRaw(ctx, []byte(`["a", 2]`)); !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}

	select {
	case err := <-done:
		if !errors.IsMalformed(err) {
			t.Errorf("expected malformed error, got %v", err)
		}
	case <-ctx.Done():
		t.Fatal("run did not return")
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file should not exist, stat err = %v", err)
	}
}
