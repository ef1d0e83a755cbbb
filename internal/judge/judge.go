// Package judge scores retrieval results and synthesized responses with an
// LLM acting as evaluator. Scores are integers in [1, 5]; an unparseable
// verdict (after one stricter retry) is a judge parse failure and the query
// is excluded from score aggregation.
package judge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/synthesis"
)

var (
	retrievalKeys = []string{"relevance", "coverage", "precision"}
	responseKeys  = []string{"accuracy", "hallucination", "helpfulness", "completeness"}
)

// RetrievalScores grades a ranked result list.
type RetrievalScores struct {
	Relevance int `json:"relevance"`
	Coverage  int `json:"coverage"`
	Precision int `json:"precision"`
}

// ResponseScores grades a synthesized recommendation.
type ResponseScores struct {
	Accuracy      int `json:"accuracy"`
	Hallucination int `json:"hallucination"`
	Helpfulness   int `json:"helpfulness"`
	Completeness  int `json:"completeness"`
}

// chatClient is the slice of the provider client the judge needs.
type chatClient interface {
	Chat(ctx context.Context, model, system, user string) (string, error)
}

// Judge is the LLM evaluator.
type Judge struct {
	client  chatClient
	model   string
	samples int
	log     *logger.Logger
}

// New creates a judge. samples > 1 enables median-of-N sampling; it must be
// odd so the median is an actual verdict, which config validation enforces.
func New(client chatClient, model string, samples int, log *logger.Logger) *Judge {
	if samples < 1 {
		samples = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Judge{
		client:  client,
		model:   model,
		samples: samples,
		log:     log.WithComponent("judge"),
	}
}

// ScoreRetrieval grades a result list against the query.
func (j *Judge) ScoreRetrieval(ctx context.Context, queryText string, items []synthesis.ContextItem) (RetrievalScores, error) {
	user := fmt.Sprintf("Shopper request: %s\n\nRetrieved items:\n%s", queryText, synthesis.RenderItems(items))

	scores, err := j.score(ctx, retrievalSystemPrompt, user, retrievalKeys)
	if err != nil {
		return RetrievalScores{}, err
	}
	return RetrievalScores{
		Relevance: scores["relevance"],
		Coverage:  scores["coverage"],
		Precision: scores["precision"],
	}, nil
}

// ScoreResponse grades a recommendation against the query and the retrieved
// facts.
func (j *Judge) ScoreResponse(ctx context.Context, queryText, responseText string, items []synthesis.ContextItem) (ResponseScores, error) {
	user := fmt.Sprintf("Shopper request: %s\n\nProduct facts:\n%s\n\nAssistant response:\n%s",
		queryText, synthesis.RenderItems(items), responseText)

	scores, err := j.score(ctx, responseSystemPrompt, user, responseKeys)
	if err != nil {
		return ResponseScores{}, err
	}
	return ResponseScores{
		Accuracy:      scores["accuracy"],
		Hallucination: scores["hallucination"],
		Helpfulness:   scores["helpfulness"],
		Completeness:  scores["completeness"],
	}, nil
}

// score runs the configured number of samples and reduces them to one verdict
// by per-key median.
func (j *Judge) score(ctx context.Context, system, user string, keys []string) (map[string]int, error) {
	samples := make([]map[string]int, 0, j.samples)
	for i := 0; i < j.samples; i++ {
		s, err := j.scoreOnce(ctx, system, user, keys)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	if len(samples) == 1 {
		return samples[0], nil
	}
	return medianScores(samples, keys), nil
}

// scoreOnce asks for one verdict, retrying once with stricter instructions if
// the reply cannot be parsed.
func (j *Judge) scoreOnce(ctx context.Context, system, user string, keys []string) (map[string]int, error) {
	reply, err := j.client.Chat(ctx, j.model, system, user)
	if err != nil {
		return nil, err
	}

	scores, parseErr := parseScores(reply, keys)
	if parseErr == nil {
		return scores, nil
	}

	j.log.Warn("judge reply unparseable, retrying with stricter instructions", "error", parseErr)
	reply, err = j.client.Chat(ctx, j.model, system+stricterSuffix, user)
	if err != nil {
		return nil, err
	}
	scores, parseErr = parseScores(reply, keys)
	if parseErr != nil {
		return nil, errors.JudgeParseError(parseErr.Error()).WithDetail("reply", truncate(reply, 200))
	}
	return scores, nil
}

// medianScores reduces samples to the per-key median. Sample count is odd, so
// the median is one of the actual verdicts.
func medianScores(samples []map[string]int, keys []string) map[string]int {
	out := make(map[string]int, len(keys))
	for _, key := range keys {
		vals := make([]int, len(samples))
		for i, s := range samples {
			vals[i] = s[key]
		}
		sort.Ints(vals)
		out[key] = vals[len(vals)/2]
	}
	return out
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
