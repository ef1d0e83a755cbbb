// Package observability keeps a bounded in-memory timeline of per-query
// benchmark activity for post-hoc inspection, dumped beside the run output.
package observability

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StageTiming is one completed pipeline stage for one query path.
type StageTiming struct {
	Stage     string        `json:"stage"`
	Path      string        `json:"path,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	Note      string        `json:"note,omitempty"`
}

// QueryTimeline is the recorded lifecycle of one benchmark query.
type QueryTimeline struct {
	QueryID      string        `json:"query_id"`
	Text         string        `json:"text"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	FinalState   string        `json:"final_state"`
	FailureCause string        `json:"failure_cause,omitempty"`
	Stages       []StageTiming `json:"stages"`
}

// RunLog collects query timelines for one benchmark run, bounded FIFO.
type RunLog struct {
	mu        sync.Mutex
	runID     string
	startedAt time.Time
	timelines []QueryTimeline
	maxSize   int
}

// NewRunLog creates a run log. maxSize <= 0 selects a default bound.
func NewRunLog(runID string, maxSize int) *RunLog {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &RunLog{
		runID:     runID,
		startedAt: time.Now().UTC(),
		timelines: make([]QueryTimeline, 0, 64),
		maxSize:   maxSize,
	}
}

// SetRunID names the run the log belongs to. The orchestrator assigns run
// ids, so the log learns its id after construction.
func (r *RunLog) SetRunID(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runID = runID
}

// Record appends one query's timeline. At capacity the oldest tenth is
// dropped to amortize the copy.
func (r *RunLog) Record(timeline QueryTimeline) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timelines = append(r.timelines, timeline)
	if len(r.timelines) > r.maxSize {
		r.timelines = r.timelines[r.maxSize/10:]
	}
}

// Timelines returns a copy of the recorded timelines.
func (r *RunLog) Timelines() []QueryTimeline {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]QueryTimeline, len(r.timelines))
	copy(out, r.timelines)
	return out
}

// Len returns the number of recorded timelines.
func (r *RunLog) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timelines)
}

// runLogFile is the on-disk dump shape.
type runLogFile struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	DumpedAt  time.Time       `json:"dumped_at"`
	Queries   []QueryTimeline `json:"queries"`
}

// Dump writes the run log as JSON into dir, named after the run id.
func (r *RunLog) Dump(dir string) (string, error) {
	r.mu.Lock()
	file := runLogFile{
		RunID:     r.runID,
		StartedAt: r.startedAt,
		DumpedAt:  time.Now().UTC(),
		Queries:   make([]QueryTimeline, len(r.timelines)),
	}
	copy(file.Queries, r.timelines)
	r.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("runlog-%s.json", r.runID))
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write run log: %w", err)
	}
	return path, nil
}

// TimelineBuilder accumulates stages for one query as it moves through the
// pipeline. Not safe for concurrent use; each query worker owns one.
type TimelineBuilder struct {
	timeline QueryTimeline
}

// NewTimeline starts a timeline for one query.
func NewTimeline(queryID, text string) *TimelineBuilder {
	return &TimelineBuilder{timeline: QueryTimeline{
		QueryID:   queryID,
		Text:      text,
		StartedAt: time.Now().UTC(),
	}}
}

// Stage records one completed stage.
func (b *TimelineBuilder) Stage(stage, path string, took time.Duration, note string) {
	b.timeline.Stages = append(b.timeline.Stages, StageTiming{
		Stage:     stage,
		Path:      path,
		Duration:  took,
		Timestamp: time.Now().UTC(),
		Note:      note,
	})
}

// Finish seals the timeline with its terminal state.
func (b *TimelineBuilder) Finish(state, failureCause string) QueryTimeline {
	b.timeline.FinishedAt = time.Now().UTC()
	b.timeline.FinalState = state
	b.timeline.FailureCause = failureCause
	return b.timeline
}
