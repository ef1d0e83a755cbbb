package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunRecord is the summary of one benchmark run kept in history.
type RunRecord struct {
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	TotalQueries int       `json:"total_queries"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	Winner       string    `json:"winner"`
	HybridWins   int       `json:"hybrid_wins"`
	KeywordWins  int       `json:"keyword_wins"`
	OutputPath   string    `json:"output_path,omitempty"`
}

// RunHistory persists benchmark run summaries in Redis so that consecutive
// runs can be compared. Uses a sorted set with the run timestamp as score.
type RunHistory struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRunHistory connects to Redis and verifies the connection.
func NewRunHistory(url string) (*RunHistory, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RunHistory{
		client: client,
		key:    "shelf:runs",
		ttl:    30 * 24 * time.Hour,
	}, nil
}

// SaveRun appends a run record and prunes records older than the TTL.
func (h *RunHistory) SaveRun(ctx context.Context, record RunRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling run record: %w", err)
	}

	pipe := h.client.Pipeline()
	pipe.ZAdd(ctx, h.key, redis.Z{
		Score:  float64(record.Timestamp.Unix()),
		Member: string(data),
	})

	minScore := time.Now().Add(-h.ttl).Unix()
	pipe.ZRemRangeByScore(ctx, h.key, "-inf", fmt.Sprintf("%d", minScore))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving run record: %w", err)
	}
	return nil
}

// Recent returns the most recent n run records, newest first.
func (h *RunHistory) Recent(ctx context.Context, n int) ([]RunRecord, error) {
	if n <= 0 {
		n = 10
	}

	members, err := h.client.ZRevRange(ctx, h.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading run history: %w", err)
	}
	return decodeRecords(members)
}

// Since returns run records at or after the given time, oldest first.
func (h *RunHistory) Since(ctx context.Context, since time.Time) ([]RunRecord, error) {
	members, err := h.client.ZRangeByScore(ctx, h.key, &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", since.Unix()),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("loading run history: %w", err)
	}
	return decodeRecords(members)
}

// SetTTL overrides the retention period for saved records.
func (h *RunHistory) SetTTL(ttl time.Duration) {
	h.ttl = ttl
}

// Close closes the Redis connection.
func (h *RunHistory) Close() error {
	return h.client.Close()
}

func decodeRecords(members []string) ([]RunRecord, error) {
	records := make([]RunRecord, 0, len(members))
	for _, member := range members {
		var record RunRecord
		if err := json.Unmarshal([]byte(member), &record); err != nil {
			// Skip records written by incompatible versions.
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
