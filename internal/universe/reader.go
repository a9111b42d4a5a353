package universe

import (
	"context"
	"fmt"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/types"
)

// Reader answers read-only questions about the investment graph: portfolio
// derivation, price history, and the derived correlation edges maintained by
// an external process.
type Reader struct {
	client graph.Client
}

// NewReader creates a new Reader with the given graph client.
func NewReader(client graph.Client) *Reader {
	return &Reader{client: client}
}

// Portfolio computes the net position per instrument for an account as
// (sum of BUY amounts - sum of SELL amounts), keeping only strictly positive
// positions. An account with no positive positions yields an empty slice.
func (r *Reader) Portfolio(ctx context.Context, accountID string) ([]Position, error) {
	cypher := `
		MATCH (a:Account {id: $account_id})-[:MADE]->(t:Transaction)-[:RELATES_TO]->(s:Stock)
		WITH s, sum(CASE WHEN t.type = 'BUY' THEN t.amount ELSE -t.amount END) AS shares
		WHERE shares > 0
		RETURN s.ticker AS ticker,
		       shares,
		       s.company_name AS company,
		       s.sector AS sector
		ORDER BY s.ticker
	`

	result, err := r.client.Query(ctx, cypher, map[string]any{"account_id": accountID})
	if err != nil {
		return nil, types.WrapError(ErrCodeReadFailed,
			fmt.Sprintf("failed to derive portfolio for account %s", accountID), err)
	}

	positions := make([]Position, 0, len(result.Records))
	for _, record := range result.Records {
		shares, ok := toFloat64(record["shares"])
		if !ok {
			return nil, types.NewError(graph.ErrCodeResultParsing,
				fmt.Sprintf("unexpected shares value: %v", record["shares"]))
		}
		positions = append(positions, Position{
			Ticker:  toString(record["ticker"]),
			Shares:  shares,
			Company: toString(record["company"]),
			Sector:  toString(record["sector"]),
		})
	}

	return positions, nil
}

// PriceHistory returns closing prices for the given ticker over the last
// days days, ordered by date ascending. The day count is a typed parameter,
// never spliced into the query text.
func (r *Reader) PriceHistory(ctx context.Context, ticker string, days int) ([]PricePoint, error) {
	if days <= 0 {
		days = 30
	}

	cypher := `
		MATCH (s:Stock {ticker: $ticker})-[:HAS_PRICE]->(p:Price)
		WHERE date(p.date) >= date() - duration({days: $days})
		RETURN p.date AS date, p.close AS close
		ORDER BY p.date
	`

	result, err := r.client.Query(ctx, cypher, map[string]any{
		"ticker": ticker,
		"days":   days,
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeReadFailed,
			fmt.Sprintf("failed to read price history for %s", ticker), err)
	}

	points := make([]PricePoint, 0, len(result.Records))
	for _, record := range result.Records {
		closePrice, ok := toFloat64(record["close"])
		if !ok {
			return nil, types.NewError(graph.ErrCodeResultParsing,
				fmt.Sprintf("unexpected close value: %v", record["close"]))
		}
		points = append(points, PricePoint{
			Date:  toString(record["date"]),
			Close: closePrice,
		})
	}

	return points, nil
}

// Correlated returns instruments correlated with the given ticker at or above
// the threshold, strongest first. The threshold is inclusive: an edge with
// strength exactly equal to threshold is returned.
func (r *Reader) Correlated(ctx context.Context, ticker string, threshold float64) ([]Correlation, error) {
	cypher := `
		MATCH (s1:Stock {ticker: $ticker})-[r:CORRELATES_WITH]->(s2:Stock)
		WHERE r.strength >= $threshold
		RETURN s2.ticker AS ticker, r.strength AS strength
		ORDER BY r.strength DESC
	`

	result, err := r.client.Query(ctx, cypher, map[string]any{
		"ticker":    ticker,
		"threshold": threshold,
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeReadFailed,
			fmt.Sprintf("failed to read correlations for %s", ticker), err)
	}

	correlations := make([]Correlation, 0, len(result.Records))
	for _, record := range result.Records {
		strength, ok := toFloat64(record["strength"])
		if !ok {
			return nil, types.NewError(graph.ErrCodeResultParsing,
				fmt.Sprintf("unexpected strength value: %v", record["strength"]))
		}
		correlations = append(correlations, Correlation{
			Ticker:   toString(record["ticker"]),
			Strength: strength,
		})
	}

	return correlations, nil
}

// PortfolioRisk summarizes the risk of an account's positive positions:
// average volatility across their correlation edges and the number of
// distinct sectors held. Returns found=false when the account holds no
// positive positions with correlation edges.
func (r *Reader) PortfolioRisk(ctx context.Context, accountID string) (RiskProfile, bool, error) {
	cypher := `
		MATCH (a:Account {id: $account_id})-[:MADE]->(t:Transaction)-[:RELATES_TO]->(s:Stock)
		WITH s, sum(CASE WHEN t.type = 'BUY' THEN t.amount ELSE -t.amount END) AS shares
		WHERE shares > 0
		MATCH (s)-[r:CORRELATES_WITH]->(other:Stock)
		RETURN avg(r.volatility) AS avg_volatility,
		       count(DISTINCT s.sector) AS sector_diversity
	`

	record, found, err := r.client.QuerySingle(ctx, cypher, map[string]any{"account_id": accountID})
	if err != nil {
		return RiskProfile{}, false, types.WrapError(ErrCodeReadFailed,
			fmt.Sprintf("failed to compute portfolio risk for account %s", accountID), err)
	}
	// Aggregation over zero rows still yields one record, with a null average.
	if !found || record["avg_volatility"] == nil {
		return RiskProfile{}, false, nil
	}

	volatility, _ := toFloat64(record["avg_volatility"])
	diversity, _ := toInt64(record["sector_diversity"])

	return RiskProfile{
		AvgVolatility:   volatility,
		SectorDiversity: diversity,
	}, true, nil
}
