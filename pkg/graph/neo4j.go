package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/soundprediction/retrievo/pkg/types"
)

// Neo4jStore implements Store against a Neo4j database.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore creates a new Neo4j store instance.
func NewNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jStore{
		client:   driver,
		database: database,
	}, nil
}

// SearchNodes performs text-based search on nodes
func (n *Neo4jStore) SearchNodes(ctx context.Context, query string, limit int) ([]types.GraphNode, error) {
	if query == "" {
		return []types.GraphNode{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Basic text search using CONTAINS
		searchQuery := `
			MATCH (n)
			WHERE n.name CONTAINS $query OR n.summary CONTAINS $query OR n.content CONTAINS $query
			RETURN n
			LIMIT $limit
		`

		res, err := tx.Run(ctx, searchQuery, map[string]any{
			"query": query,
			"limit": limit,
		})
		if err != nil {
			return nil, err
		}

		records, err := res.Collect(ctx)
		return records, err
	})
	if err != nil {
		return nil, err
	}

	records := result.([]*db.Record)
	nodes := make([]types.GraphNode, 0, len(records))

	for _, record := range records {
		nodeValue, found := record.Get("n")
		if !found {
			continue
		}
		node, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue // Skip invalid type
		}
		nodes = append(nodes, nodeFromDBNode(node))
	}

	return nodes, nil
}

// GetNeighbors returns the relationships reachable from nodeID within
// maxDepth hops. The relation name is the relationship type of the last hop.
func (n *Neo4jStore) GetNeighbors(ctx context.Context, nodeID string, maxDepth int) ([]types.Neighbor, error) {
	if maxDepth <= 0 {
		maxDepth = 1
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
			MATCH (start {id: $nodeID})
			MATCH (start)-[rels*1..%d]-(neighbor)
			WHERE neighbor.id <> $nodeID
			RETURN DISTINCT type(last(rels)) AS relation, neighbor
		`, maxDepth)

		res, err := tx.Run(ctx, query, map[string]any{
			"nodeID": nodeID,
		})
		if err != nil {
			return nil, err
		}

		records, err := res.Collect(ctx)
		return records, err
	})
	if err != nil {
		return nil, err
	}

	records := result.([]*db.Record)
	neighbors := make([]types.Neighbor, 0, len(records))

	for _, record := range records {
		nodeValue, found := record.Get("neighbor")
		if !found {
			continue
		}
		node, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue // Skip invalid type
		}

		relation := ""
		if relValue, found := record.Get("relation"); found {
			if rel, ok := relValue.(string); ok {
				relation = rel
			}
		}

		neighbors = append(neighbors, types.Neighbor{
			Relation: relation,
			Node:     nodeFromDBNode(node),
		})
	}

	return neighbors, nil
}

// Close implements Store
func (n *Neo4jStore) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// nodeFromDBNode converts a Neo4j node into the canonical graph node shape.
// Identity and name come from the id/name properties when present; the node
// type is the first label.
func nodeFromDBNode(node dbtype.Node) types.GraphNode {
	out := types.GraphNode{
		ID:         node.ElementId,
		Properties: make(map[string]any, len(node.Props)),
	}
	if len(node.Labels) > 0 {
		out.Type = node.Labels[0]
	}

	for key, value := range node.Props {
		switch key {
		case "id":
			if id, ok := value.(string); ok && id != "" {
				out.ID = id
			}
		case "name":
			if name, ok := value.(string); ok {
				out.Name = name
			}
		default:
			out.Properties[key] = value
		}
	}

	return out
}
