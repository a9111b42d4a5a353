// Package graph provides the session gateway over the investment graph engine.
//
// This package defines a generic Client interface that can be implemented for
// different graph database backends. The primary implementation is for Neo4j;
// the interface design allows other property-graph engines to be integrated.
//
// # Architecture
//
//   - Client: Core interface defining query execution operations
//   - Neo4jClient: Production implementation using the Neo4j Go driver
//   - MockClient: Scripted test implementation for unit testing
//
// # Usage
//
//	config := graph.DefaultConfig()
//	config.URI = "bolt://localhost:7687"
//	config.Username = "neo4j"
//	config.Password = "password"
//
//	client, err := graph.NewNeo4jClient(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
//	result, err := client.Query(ctx,
//	    "MATCH (s:Stock {ticker: $ticker}) RETURN s.company_name AS company",
//	    map[string]any{"ticker": "AAPL"},
//	)
//
// # Session scoping
//
// Every Query/Execute call opens a fresh session scoped to the call and closes
// it on all exit paths (success, empty result, or failure). No session is
// shared across calls, so resource usage is bounded to one active session per
// in-flight call. Read queries run in read transactions, Execute in write
// transactions; the driver handles pooling and transaction retries.
//
// # Error semantics
//
// Engine-level failures are wrapped as structured errors carrying
// ErrCodeQueryFailed and the driver error as cause. An empty-but-successful
// result and a failure are distinct outcomes: callers never receive an empty
// result in place of an error. The IsProcedureNotFound and IsGraphNotFound
// helpers classify engine status codes for the fallback and projection
// teardown paths.
package graph
