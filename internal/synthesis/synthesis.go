package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/pkg/security"
	"github.com/shelfsearch/shelf-search/internal/retrieval"
)

const systemPrompt = `You are a product recommendation assistant for a retail catalog.
Recommend products for the shopper's request using ONLY the items provided in the context.
Rules:
- Cite every product you mention with its id in square brackets, e.g. [shoe-042].
- State prices, stock status, and sizes exactly as given in the context. Never invent or adjust them.
- Do not mention products that are not in the context.
- If the context contains no items, say that nothing matching was found and suggest relaxing the request.
Keep the recommendation concise: a short paragraph plus a line per recommended product.`

// chatClient is the slice of the provider client synthesis needs.
type chatClient interface {
	Chat(ctx context.Context, model, system, user string) (string, error)
}

// Response is one synthesized recommendation.
type Response struct {
	Path    retrieval.Path
	Text    string
	Context []ContextItem
	Latency time.Duration
}

// Synthesizer generates recommendations through the LLM provider.
type Synthesizer struct {
	client chatClient
	model  string
	log    *logger.Logger
}

// New creates a synthesizer.
func New(client chatClient, model string, log *logger.Logger) *Synthesizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Synthesizer{
		client: client,
		model:  model,
		log:    log.WithComponent("synthesis"),
	}
}

// Generate produces the recommendation text for one query's retrieval result.
// Both paths go through here; the path only tags the output.
func (s *Synthesizer) Generate(ctx context.Context, cat *catalog.Catalog, queryText string, result retrieval.Result) (Response, error) {
	start := time.Now()

	items := BuildContext(cat, result.Items)

	var user strings.Builder
	fmt.Fprintf(&user, "Shopper request: %s\n\nRetrieved products:\n%s", queryText, RenderItems(items))

	text, err := s.client.Chat(ctx, s.model, systemPrompt, user.String())
	if err != nil {
		return Response{}, errors.SynthesisError("generating recommendation", err)
	}
	text = security.SanitizeText(text)
	if strings.TrimSpace(text) == "" {
		return Response{}, errors.SynthesisError("provider returned an empty recommendation", nil)
	}

	resp := Response{
		Path:    result.Path,
		Text:    text,
		Context: items,
		Latency: time.Since(start),
	}
	s.log.Debug("synthesized",
		"path", string(result.Path),
		"items", len(items),
		"took", resp.Latency.String())
	return resp, nil
}
