package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2y-d5l/boundq/queue"
)

func shortScenario(policy queue.OverflowPolicy, capacity int) Scenario {
	return Scenario{
		Name:      "short",
		Producers: 4,
		Consumers: 1,
		Capacity:  capacity,
		Policy:    policy,
		Batch:     4,
		Duration:  100 * time.Millisecond,
	}
}

func TestRunner_ConservesItemsWhenUnbounded(t *testing.T) {
	r := &Runner{}
	res, err := r.Run(context.Background(), shortScenario(queue.TruncateSilent, queue.Unbounded))
	require.NoError(t, err)

	assert.Positive(t, res.Produced)
	assert.Equal(t, res.Produced, res.Admitted)
	assert.Equal(t, res.Produced, res.Consumed)
	assert.Zero(t, res.Evicted)
	assert.Zero(t, res.Trimmed)
	assert.Positive(t, res.Throughput)
	assert.Equal(t, "100ms", res.Duration)
}

func TestRunner_Policies(t *testing.T) {
	for _, policy := range queue.Policies() {
		t.Run(policy.String(), func(t *testing.T) {
			r := &Runner{}
			res, err := r.Run(context.Background(), shortScenario(policy, 8))
			require.NoError(t, err)

			// Every admitted item either left through a consumer or was
			// evicted by a later admission.
			assert.Equal(t, res.Admitted, res.Consumed+res.Evicted)
			if policy.Rejects() {
				assert.Zero(t, res.Evicted)
				assert.Zero(t, res.Trimmed)
			} else {
				assert.Zero(t, res.Rejected)
			}
			if policy == queue.RejectHard {
				assert.Equal(t, res.Produced, res.Admitted)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	var b backoff
	ctx := context.Background()

	b.Wait(ctx)
	assert.Equal(t, 2*minRejectBackoff, b.next)
	for range 10 {
		b.Wait(ctx)
	}
	assert.Equal(t, maxRejectBackoff, b.next)

	b.Reset()
	assert.Equal(t, minRejectBackoff, b.next)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	b.next = time.Hour
	start := time.Now()
	b.Wait(cancelled)
	assert.Less(t, time.Since(start), time.Second, "Wait returns when ctx is done")
}

func TestDrive_BacksOffOnHardReject(t *testing.T) {
	out := queue.MustNew[int64](queue.Config{})
	out.End()

	var attempts atomic.Int64
	p := pipeline[int64]{
		put: func(...int64) error {
			attempts.Add(1)
			return queue.ErrCapacityExceeded
		},
		out:    out,
		finish: func(context.Context) error { return nil },
	}
	sc := shortScenario(queue.RejectHard, 1)
	sc.Producers = 1

	res, err := drive(context.Background(), sc, p, func(i int64) int64 { return i })
	require.NoError(t, err)
	assert.Zero(t, res.Produced)
	// A doubling pause capped at a few milliseconds allows a few dozen
	// attempts in 100ms; a spinning producer makes millions.
	assert.Positive(t, attempts.Load())
	assert.Less(t, attempts.Load(), int64(500))
}

func TestRunner_RejectsInvalidScenario(t *testing.T) {
	r := &Runner{}
	sc := shortScenario(queue.TruncateSilent, -1)
	_, err := r.Run(context.Background(), sc)
	require.ErrorIs(t, err, queue.ErrInvalidCapacity)

	sc = shortScenario(queue.TruncateSilent, 8)
	sc.NATS = true
	_, err = r.Run(context.Background(), sc)
	require.Error(t, err, "NATS mode without a connection")
}

func TestRunner_NATS(t *testing.T) {
	ctx := context.Background()
	nc, shutdown, err := startNATS(ctx)
	require.NoError(t, err)
	defer shutdown()

	r := &Runner{NATS: nc}
	sc := shortScenario(queue.TruncateSilent, queue.Unbounded)
	sc.NATS = true

	res, err := r.Run(ctx, sc)
	require.NoError(t, err)
	assert.Positive(t, res.Produced)
	assert.Equal(t, res.Produced, res.Consumed)
}

func TestReport(t *testing.T) {
	res := Result{
		Scenario:   shortScenario(queue.TruncateWarn, 8),
		Produced:   10,
		Admitted:   10,
		Evicted:    2,
		Consumed:   8,
		Throughput: 80,
	}

	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, []Result{res}))
	out := buf.String()
	assert.Contains(t, out, "truncate-warn")
	assert.Contains(t, out, "short")
	assert.Equal(t, 2, strings.Count(out, "\n"))

	path := filepath.Join(t.TempDir(), "results.json")
	s := Session{SessionTime: "now", SystemInfo: gatherSystemInfo(), Results: []Result{res}}
	require.NoError(t, appendSession(path, s))
	require.NoError(t, appendSession(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var sessions []Session
	require.NoError(t, json.Unmarshal(data, &sessions))
	require.Len(t, sessions, 2)
	assert.Equal(t, queue.TruncateWarn, sessions[1].Results[0].Scenario.Policy)
	assert.Positive(t, sessions[0].SystemInfo.NumCPU)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	assert.Error(t, appendSession(path, s))
}

func TestRun_WithConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "scenarios.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
scenarios:
  - name: a
    duration: 50ms
    policy: truncate-silent
  - name: b
    duration: 50ms
    policy: reject-silent
`), 0o644))
	out := filepath.Join(dir, "out.json")

	log := discardLogger()
	require.NoError(t, run(context.Background(), []string{"-config", cfg, "-json", out, "-capacity", "16"}, log))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var sessions []Session
	require.NoError(t, json.Unmarshal(data, &sessions))
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Results, 2)
	assert.Equal(t, "b", sessions[0].Results[1].Scenario.Name)
	assert.Equal(t, 16, sessions[0].Results[1].Scenario.Capacity)
}
