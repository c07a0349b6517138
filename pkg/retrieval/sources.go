package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/soundprediction/retrievo/pkg/types"
)

// overFetchFactor is how many candidates each source is asked for relative
// to the requested top-k, leaving headroom for filtering and rerank
// reshuffling.
const overFetchFactor = 2

// maxNeighborLines caps how many neighbor relations are rendered into a
// graph record's content.
const maxNeighborLines = 5

// searchKeyword queries the lexical index and normalizes its hits.
func (r *Retriever) searchKeyword(ctx context.Context, query string, topK int) ([]types.Record, error) {
	hits, err := r.searcher.Search(ctx, query, topK*overFetchFactor)
	if err != nil {
		return nil, err
	}

	records := make([]types.Record, 0, len(hits))
	for _, hit := range hits {
		if hit.Content == "" {
			continue
		}
		records = append(records, types.Record{
			Content:  hit.Content,
			Metadata: hit.Metadata,
			Score:    hit.Score,
			Source:   types.SourceKeyword,
		})
	}
	return records, nil
}

// searchGraph queries the knowledge graph and synthesizes one record per
// matched node from the node itself plus its depth-1 neighborhood.
//
// Neighbor expansions run concurrently under a bounded semaphore, with the
// node list capped at GraphMaxNodes; output order still follows the store's
// match order via indexed slots. A failed expansion degrades that node's
// record to node-only content instead of discarding it.
func (r *Retriever) searchGraph(ctx context.Context, query string, topK int) ([]types.Record, error) {
	nodes, err := r.store.SearchNodes(ctx, query, topK*overFetchFactor)
	if err != nil {
		return nil, err
	}
	if len(nodes) > r.cfg.GraphMaxNodes {
		nodes = nodes[:r.cfg.GraphMaxNodes]
	}

	records := make([]types.Record, len(nodes))
	sem := make(chan struct{}, r.cfg.GraphMaxConcurrency)
	var wg sync.WaitGroup
	for i, node := range nodes {
		wg.Add(1)
		go func(slot int, node types.GraphNode) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			neighbors, err := r.store.GetNeighbors(ctx, node.ID, 1)
			if err != nil {
				r.logger.Warn("neighbor expansion failed",
					"node_id", node.ID,
					"error", err.Error())
				neighbors = nil
			}
			records[slot] = graphRecord(node, neighbors)
		}(i, node)
	}
	wg.Wait()

	return records, nil
}

// graphRecord synthesizes the canonical record for one graph node: the node
// name, its non-identifier properties as "key: value" lines, then up to
// maxNeighborLines relations as "- relation: neighbor_name" lines. The
// score is a uniform 1.0 placeholder; a raw graph match carries no lexical
// relevance signal, so ranking is deferred to the rerank stage.
func graphRecord(node types.GraphNode, neighbors []types.Neighbor) types.Record {
	var sb strings.Builder
	sb.WriteString(node.Name)

	keys := make([]string, 0, len(node.Properties))
	for key := range node.Properties {
		if key == "id" || key == "uuid" || key == "name" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s: %v", key, node.Properties[key]))
	}

	for i, neighbor := range neighbors {
		if i >= maxNeighborLines {
			break
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("- %s: %s", neighbor.Relation, neighbor.Node.Name))
	}

	return types.Record{
		Content: sb.String(),
		Metadata: map[string]any{
			"id":         node.ID,
			"name":       node.Name,
			"type":       node.Type,
			"properties": node.Properties,
		},
		Score:  1.0,
		Source: types.SourceKnowledgeGraph,
	}
}
