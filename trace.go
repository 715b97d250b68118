package placecraft

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TraceRecord is one best-so-far snapshot: wall-clock seconds since the
// solve started and a copy of the best permutation at that moment.
type TraceRecord struct {
	Elapsed float64
	Perm    []int
}

// ProgressLogger provides dual-format progress output for the solvers plus
// the snapshot ring consumed by external reporting. Console output is
// human-readable, file output is JSONL for analysis; either writer can be
// nil to disable that channel. Snapshots are appended when the configured
// interval has elapsed; the last snapshot is always overwritten with the
// final best before a solver returns.
type ProgressLogger struct {
	console io.Writer
	file    io.Writer

	interval  float64 // seconds; <= 0 disables snapshots
	startTime time.Time
	lastSnap  time.Time
	records   []TraceRecord
}

// NewProgressLogger creates a logger with separate console and JSONL
// outputs and the given snapshot interval in seconds (-1 disables).
func NewProgressLogger(console, file io.Writer, interval float64) *ProgressLogger {
	now := time.Now()
	return &ProgressLogger{
		console:   console,
		file:      file,
		interval:  interval,
		startTime: now,
		lastSnap:  now,
	}
}

// logEvent is a single JSONL entry.
type logEvent struct {
	Event     string  `json:"event"`
	ElapsedMs int64   `json:"elapsed_ms"`
	Iteration *int    `json:"iteration,omitempty"`
	Cost      *int64  `json:"cost,omitempty"`
	BestCost  *int64  `json:"best_cost,omitempty"`
	Solver    string  `json:"solver,omitempty"`
	Message   string  `json:"message,omitempty"`
	Seed      *int64  `json:"seed,omitempty"`
	Perm      []int   `json:"perm,omitempty"`
	TimeSec   *float64 `json:"time_sec,omitempty"`
}

func (l *ProgressLogger) writeJSON(event logEvent) {
	if l.file == nil {
		return
	}
	event.ElapsedMs = time.Since(l.startTime).Milliseconds()
	data, err := json.Marshal(event)
	if err != nil {
		return // silently ignore JSON errors
	}
	data = append(data, '\n')
	_, _ = l.file.Write(data)
}

// LogStart logs the beginning of a solve.
func (l *ProgressLogger) LogStart(solver string, seed int64, timeSec float64) {
	if l.console != nil {
		MustFprintf(l.console, "%s: seed=%d, time=%.2g, debug_interval=%.2g\n",
			solver, seed, timeSec, l.interval)
	}
	l.writeJSON(logEvent{Event: "start", Solver: solver, Seed: &seed, TimeSec: &timeSec})
}

// LogImprovement logs a new best cost.
func (l *ProgressLogger) LogImprovement(iteration int, best int64) {
	if l.console != nil {
		MustFprintf(l.console, "Iter %d: new best cost: %d (elapsed: %v)\n",
			iteration, best, time.Since(l.startTime).Round(time.Millisecond))
	}
	l.writeJSON(logEvent{Event: "improvement", Iteration: &iteration, BestCost: &best})
}

// LogEnd logs the end of a solve.
func (l *ProgressLogger) LogEnd(iterations int, best int64) {
	if l.console != nil {
		MustFprintf(l.console, "Done: best cost %d after %d iterations (%v)\n",
			best, iterations, time.Since(l.startTime).Round(time.Millisecond))
	}
	l.writeJSON(logEvent{Event: "end", Iteration: &iterations, BestCost: &best})
}

// Snapshot appends a best-so-far record when the snapshot interval has
// elapsed. The recorded permutation is always the best found so far, never
// the current working solution.
func (l *ProgressLogger) Snapshot(best []int) {
	if l.interval <= 0 {
		return
	}
	now := time.Now()
	if now.Sub(l.lastSnap).Seconds() < l.interval && len(l.records) > 0 {
		return
	}
	l.append(best)
	l.lastSnap = now
}

// Finalize overwrites the last snapshot with the final best. With no
// snapshot taken yet (and snapshots enabled) it appends one.
func (l *ProgressLogger) Finalize(best []int) {
	if l.interval <= 0 {
		return
	}
	if len(l.records) == 0 {
		l.append(best)
		return
	}
	p := make([]int, len(best))
	copy(p, best)
	l.records[len(l.records)-1] = TraceRecord{Elapsed: time.Since(l.startTime).Seconds(), Perm: p}
}

func (l *ProgressLogger) append(best []int) {
	p := make([]int, len(best))
	copy(p, best)
	l.records = append(l.records, TraceRecord{Elapsed: time.Since(l.startTime).Seconds(), Perm: p})
	l.writeJSON(logEvent{Event: "snapshot", Perm: p})
}

// Records returns the snapshot trace in recording order.
func (l *ProgressLogger) Records() []TraceRecord {
	return l.records
}

// RenderTrace writes the recorded trace as a table, one row per snapshot.
func RenderTrace(w io.Writer, records []TraceRecord) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "Elapsed (s)", "Permutation"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	for i, rec := range records {
		tw.AppendRow(table.Row{i + 1, fmt.Sprintf("%.3f", rec.Elapsed), fmt.Sprint(rec.Perm)})
	}
	tw.Render()
}
