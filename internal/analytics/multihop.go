package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/types"
	"github.com/ngudow/SMP-graph/internal/universe"
)

// procExpandConfig is the configurable path-expansion procedure preferred by
// multi-hop queries. Engine builds without the APOC extension fall back to a
// plain variable-length pattern match.
const procExpandConfig = "apoc.path.expandConfig"

// Multi-hop expansion limits. maxHopsCeiling bounds the variable-length
// pattern the fallback query builds.
const (
	DefaultMaxHops = 3
	DefaultLimit   = 100
	maxHopsCeiling = 15
)

// expandableRelationships is the allow-list of relationship types a caller
// may expand across. Requested types are validated against this set before
// any query text is assembled.
var expandableRelationships = map[string]bool{
	universe.RelHasPrice:       true,
	universe.RelCorrelatesWith: true,
	universe.RelAffectedBy:     true,
	universe.RelMade:           true,
	universe.RelRelatesTo:      true,
}

// MultiHop finds instruments reachable from a start ticker within a bounded
// number of hops. It needs no persistent projection: expansion runs directly
// against the stored graph.
type MultiHop struct {
	client graph.Client
	caps   *Capabilities
}

// NewMultiHop creates a multi-hop expansion adapter sharing the given
// capability cache.
func NewMultiHop(client graph.Client, caps *Capabilities) *MultiHop {
	return &MultiHop{client: client, caps: caps}
}

// Neighbors returns the distinct Stock nodes reachable from ticker within
// maxHops hops, ordered by distance ascending and capped at limit. The start
// node itself is never returned and each ticker appears at most once, at its
// minimum distance. relTypes restricts which relationship types are expanded;
// empty means all allow-listed types. limit is a hint: the engine may return
// fewer matches.
func (m *MultiHop) Neighbors(ctx context.Context, ticker string, maxHops int, relTypes []string, limit int) ([]Neighbor, error) {
	if ticker == "" {
		return nil, types.NewError(ErrCodeInvalidArgument, "ticker cannot be empty")
	}
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	if maxHops > maxHopsCeiling {
		return nil, types.NewError(ErrCodeInvalidArgument,
			fmt.Sprintf("maxHops %d exceeds ceiling %d", maxHops, maxHopsCeiling))
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	validated, err := validateRelTypes(relTypes)
	if err != nil {
		return nil, err
	}

	params := map[string]any{
		"ticker":   ticker,
		"max_hops": maxHops,
		"limit":    limit,
	}

	result, err := m.expand(ctx, params, validated, maxHops)
	if err != nil {
		return nil, err
	}

	neighbors := make([]Neighbor, 0, len(result.Records))
	for _, record := range result.Records {
		distance, _ := toInt64(record["distance"])
		neighbors = append(neighbors, Neighbor{
			Ticker:   toString(record["ticker"]),
			Labels:   toLabels(record["labels"]),
			Distance: distance,
		})
	}

	return neighbors, nil
}

// expand tries the configurable path-expansion procedure first, falling back
// to a variable-length pattern match when the engine build lacks it. The
// fallback decision is cached for the process lifetime.
func (m *MultiHop) expand(ctx context.Context, params map[string]any, relTypes []string, maxHops int) (graph.QueryResult, error) {
	if !m.caps.Unavailable(procExpandConfig) {
		primaryParams := map[string]any{
			"ticker":     params["ticker"],
			"max_hops":   params["max_hops"],
			"limit":      params["limit"],
			"rel_filter": relationshipFilter(relTypes),
		}

		result, err := m.client.Query(ctx, expandConfigQuery, primaryParams)
		if err == nil {
			return result, nil
		}
		if !graph.IsProcedureNotFound(err) {
			return graph.QueryResult{}, types.WrapError(ErrCodeAlgorithmFailed,
				"path expansion failed", err)
		}
		m.caps.MarkUnavailable(procExpandConfig)
	}

	result, err := m.client.Query(ctx, fallbackQuery(relTypes, maxHops), params)
	if err != nil {
		return graph.QueryResult{}, types.WrapError(ErrCodeAlgorithmFailed,
			"path expansion fallback failed", err)
	}
	return result, nil
}

// expandConfigQuery restricts terminal nodes to the Stock/Factor/Account
// labels, keeps only Stock-labeled terminals, and deduplicates by node at
// minimum distance. The relationship filter is a typed parameter.
const expandConfigQuery = `
	MATCH (start:Stock {ticker: $ticker})
	CALL apoc.path.expandConfig(start, {
		relationshipFilter: $rel_filter,
		minLevel: 1,
		maxLevel: $max_hops,
		limit: $limit,
		labelFilter: '+Stock|+Factor|+Account'
	}) YIELD path
	WITH last(nodes(path)) AS lastNode, min(length(path)) AS distance
	WHERE lastNode:Stock AND lastNode.ticker <> $ticker
	RETURN lastNode.ticker AS ticker,
	       labels(lastNode) AS labels,
	       distance
	ORDER BY distance
	LIMIT $limit
`

// relationshipFilter renders the expandConfig relationship filter: each type
// outgoing ("TYPE>"), or ">" alone for any outgoing relationship.
func relationshipFilter(relTypes []string) string {
	if len(relTypes) == 0 {
		return ">"
	}
	parts := make([]string, 0, len(relTypes))
	for _, rel := range relTypes {
		parts = append(parts, rel+">")
	}
	return strings.Join(parts, "|")
}

// fallbackQuery builds a variable-length pattern match computing shortest
// path distance explicitly. Pattern bounds and relationship alternations
// cannot be parameterized in Cypher, so the validated hop count and
// allow-listed relationship types are rendered into the pattern.
func fallbackQuery(relTypes []string, maxHops int) string {
	relFragment := ""
	if len(relTypes) > 0 {
		relFragment = ":" + strings.Join(relTypes, "|")
	}

	return fmt.Sprintf(`
		MATCH (s1:Stock {ticker: $ticker})
		MATCH path = shortestPath((s1)-[%s*1..%d]-(s2:Stock))
		WHERE s2.ticker <> $ticker
		RETURN DISTINCT s2.ticker AS ticker,
		       labels(s2) AS labels,
		       length(path) AS distance
		ORDER BY distance
		LIMIT $limit
	`, relFragment, maxHops)
}

// validateRelTypes checks every requested relationship type against the
// allow-list before it can reach query text.
func validateRelTypes(relTypes []string) ([]string, error) {
	validated := make([]string, 0, len(relTypes))
	for _, rel := range relTypes {
		if !expandableRelationships[rel] {
			return nil, types.NewError(ErrCodeInvalidRelationship,
				fmt.Sprintf("unknown relationship type: %s", rel))
		}
		validated = append(validated, rel)
	}
	return validated, nil
}
