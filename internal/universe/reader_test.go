package universe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngudow/SMP-graph/internal/graph"
)

func newReaderFixture(t *testing.T) (*Reader, *graph.MockClient) {
	t.Helper()
	mock := graph.NewMockClient()
	require.NoError(t, mock.Connect(context.Background()))
	return NewReader(mock), mock
}

// TestReader_Portfolio tests net-position reshaping and the query policy.
func TestReader_Portfolio(t *testing.T) {
	r, mock := newReaderFixture(t)

	// One BUY of 10 and one SELL of 4 net to 6 inside the engine; the facade
	// receives the aggregated row.
	mock.AddResult(graph.QueryResult{
		Records: []map[string]any{
			{"ticker": "AAPL", "shares": float64(6), "company": "Apple Inc.", "sector": "Technology"},
		},
		Columns: []string{"ticker", "shares", "company", "sector"},
	})

	positions, err := r.Portfolio(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, Position{
		Ticker:  "AAPL",
		Shares:  6,
		Company: "Apple Inc.",
		Sector:  "Technology",
	}, positions[0])

	// The net-position and positive-only policy live in the query itself.
	calls := mock.CallsContaining("MADE")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "sum(CASE WHEN t.type = 'BUY' THEN t.amount ELSE -t.amount END)")
	assert.Contains(t, calls[0].Cypher, "WHERE shares > 0")
	assert.Equal(t, "u1", calls[0].Params["account_id"])
}

// TestReader_Portfolio_Empty tests that no positions yields an empty slice,
// not an error.
func TestReader_Portfolio_Empty(t *testing.T) {
	r, _ := newReaderFixture(t)

	positions, err := r.Portfolio(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, positions)
}

// TestReader_PriceHistory tests the typed day-count parameter.
func TestReader_PriceHistory(t *testing.T) {
	r, mock := newReaderFixture(t)

	mock.AddResult(graph.QueryResult{
		Records: []map[string]any{
			{"date": "2026-08-27", "close": 231.2},
			{"date": "2026-08-28", "close": 232.5},
		},
	})

	points, err := r.PriceHistory(context.Background(), "AAPL", 7)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, PricePoint{Date: "2026-08-27", Close: 231.2}, points[0])

	calls := mock.CallsContaining("HAS_PRICE")
	require.Len(t, calls, 1)
	// The day count is a parameter, never spliced into the query text.
	assert.Equal(t, 7, calls[0].Params["days"])
	assert.NotContains(t, calls[0].Cypher, "7")
	assert.Contains(t, calls[0].Cypher, "duration({days: $days})")
	assert.Contains(t, calls[0].Cypher, "ORDER BY p.date")
}

// TestReader_PriceHistory_DefaultDays tests the 30-day default.
func TestReader_PriceHistory_DefaultDays(t *testing.T) {
	r, mock := newReaderFixture(t)

	_, err := r.PriceHistory(context.Background(), "AAPL", 0)
	require.NoError(t, err)

	calls := mock.CallsContaining("HAS_PRICE")
	require.Len(t, calls, 1)
	assert.Equal(t, 30, calls[0].Params["days"])
}

// TestReader_Correlated tests the inclusive threshold filter.
func TestReader_Correlated(t *testing.T) {
	r, mock := newReaderFixture(t)

	mock.AddResult(graph.QueryResult{
		Records: []map[string]any{
			{"ticker": "MSFT", "strength": 0.9},
			{"ticker": "GOOG", "strength": 0.7},
		},
	})

	correlations, err := r.Correlated(context.Background(), "AAPL", 0.7)
	require.NoError(t, err)
	require.Len(t, correlations, 2)
	// A strength exactly at the threshold is included.
	assert.Equal(t, Correlation{Ticker: "GOOG", Strength: 0.7}, correlations[1])

	calls := mock.CallsContaining("CORRELATES_WITH")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "r.strength >= $threshold")
	assert.Equal(t, 0.7, calls[0].Params["threshold"])
	assert.Contains(t, calls[0].Cypher, "ORDER BY r.strength DESC")
}

// TestReader_PortfolioRisk tests the risk summary reshaping.
func TestReader_PortfolioRisk(t *testing.T) {
	r, mock := newReaderFixture(t)

	mock.AddResult(graph.QueryResult{
		Records: []map[string]any{
			{"avg_volatility": 0.31, "sector_diversity": int64(4)},
		},
	})

	profile, found, err := r.PortfolioRisk(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0.31, profile.AvgVolatility)
	assert.Equal(t, int64(4), profile.SectorDiversity)
}

// TestReader_PortfolioRisk_NoPositions tests the explicit no-result marker.
func TestReader_PortfolioRisk_NoPositions(t *testing.T) {
	r, _ := newReaderFixture(t)

	_, found, err := r.PortfolioRisk(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, found)
}

// TestReader_PortfolioRisk_NullAverage tests the aggregate-over-zero-rows
// shape: one record with a null average still means no positions.
func TestReader_PortfolioRisk_NullAverage(t *testing.T) {
	r, mock := newReaderFixture(t)

	mock.AddResult(graph.QueryResult{
		Records: []map[string]any{
			{"avg_volatility": nil, "sector_diversity": int64(0)},
		},
	})

	_, found, err := r.PortfolioRisk(context.Background(), "u3")
	require.NoError(t, err)
	assert.False(t, found)
}
