package placecraft

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressLoggerSnapshots(t *testing.T) {
	t.Run("disabled interval records nothing", func(t *testing.T) {
		l := NewProgressLogger(nil, nil, Unbounded)
		l.Snapshot([]int{0, 1, 2})
		l.Finalize([]int{0, 1, 2})
		require.Empty(t, l.Records())
	})

	t.Run("snapshots copy the permutation", func(t *testing.T) {
		l := NewProgressLogger(nil, nil, 1e-9)
		perm := []int{0, 1, 2}
		l.Snapshot(perm)
		perm[0], perm[1] = perm[1], perm[0]

		records := l.Records()
		require.Len(t, records, 1)
		require.Equal(t, []int{0, 1, 2}, records[0].Perm)
	})

	t.Run("finalize overwrites the last record", func(t *testing.T) {
		l := NewProgressLogger(nil, nil, 1e-9)
		l.Snapshot([]int{0, 1, 2})
		l.Snapshot([]int{1, 0, 2})
		count := len(l.Records())

		l.Finalize([]int{2, 1, 0})
		records := l.Records()
		require.Len(t, records, count)
		require.Equal(t, []int{2, 1, 0}, records[len(records)-1].Perm)
	})

	t.Run("finalize appends when no snapshot was taken", func(t *testing.T) {
		l := NewProgressLogger(nil, nil, 100)
		l.Finalize([]int{1, 0})
		require.Len(t, l.Records(), 1)
	})
}

func TestProgressLoggerJSONL(t *testing.T) {
	var file bytes.Buffer
	l := NewProgressLogger(nil, &file, 1e-9)

	l.LogStart("cets", 42, 1.5)
	l.LogImprovement(3, 123)
	l.Snapshot([]int{1, 0})
	l.LogEnd(7, 99)

	var events []map[string]any
	scanner := bufio.NewScanner(&file)
	for scanner.Scan() {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, events, 4)

	require.Equal(t, "start", events[0]["event"])
	require.Equal(t, "cets", events[0]["solver"])
	require.Equal(t, float64(42), events[0]["seed"])

	require.Equal(t, "improvement", events[1]["event"])
	require.Equal(t, float64(123), events[1]["best_cost"])

	require.Equal(t, "snapshot", events[2]["event"])
	require.Equal(t, "end", events[3]["event"])
}

func TestProgressLoggerConsole(t *testing.T) {
	var console bytes.Buffer
	l := NewProgressLogger(&console, nil, Unbounded)

	l.LogStart("drezner", 1, 2)
	l.LogImprovement(0, 10)
	l.LogEnd(5, 10)

	out := console.String()
	require.Contains(t, out, "drezner")
	require.Contains(t, out, "new best cost: 10")
	require.Contains(t, out, "best cost 10 after 5 iterations")
}

func TestRenderTrace(t *testing.T) {
	var out strings.Builder
	RenderTrace(&out, []TraceRecord{
		{Elapsed: 0.25, Perm: []int{2, 0, 1}},
		{Elapsed: 1.5, Perm: []int{0, 1, 2}},
	})

	s := out.String()
	require.Contains(t, s, "ELAPSED (S)")
	require.Contains(t, s, "0.250")
	require.Contains(t, s, "[2 0 1]")
}
