// Package retrievo provides hybrid retrieval with cross-encoder reranking
// for RAG pipelines.
//
// A retrievo client fans a query out concurrently to a keyword index and a
// knowledge graph, merges the hits into one canonical record shape, applies
// metadata filters, reranks with a cross-encoder, and returns the top-k
// records. Every backend is allowed to fail without failing the call.
//
// # Basic Usage
//
// Create a client from its components:
//
//	// Keyword index over HTTP
//	searcher := keyword.NewHTTPSearcher(keyword.HTTPConfig{BaseURL: "http://localhost:9200"})
//
//	// Knowledge graph store
//	store, err := graph.NewNeo4jStore("bolt://localhost:7687", "neo4j", "password", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Reranker
//	rr := reranker.NewLocalClient(reranker.Config{})
//
//	client := retrievo.NewClient(
//		retrieval.New(searcher, store, rr, nil, retrieval.DefaultConfig()),
//		nil, nil)
//	defer client.Close(ctx)
//
//	records, err := client.Retrieve(ctx, "中医养生", types.Options{TopK: 5})
//
// Or wire everything from configuration with NewFromConfig.
package retrievo
