package bench

import (
	"sort"
	"sync"
)

// resultCollector gathers per-query results from the worker pool. Results are
// re-sorted into dataset order at the end, so append order does not matter.
type resultCollector struct {
	mu      sync.Mutex
	results []QueryResult
	order   map[string]int
}

func newResultCollector(queryIDs []string) *resultCollector {
	order := make(map[string]int, len(queryIDs))
	for i, id := range queryIDs {
		order[id] = i
	}
	return &resultCollector{
		results: make([]QueryResult, 0, len(queryIDs)),
		order:   order,
	}
}

func (c *resultCollector) add(result QueryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// collect returns the results in dataset order.
func (c *resultCollector) collect() []QueryResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]QueryResult, len(c.results))
	copy(out, c.results)

	sort.Slice(out, func(i, j int) bool {
		return c.order[out[i].QueryID] < c.order[out[j].QueryID]
	})
	return out
}
