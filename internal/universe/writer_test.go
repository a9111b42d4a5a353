package universe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/types"
)

func newWriterFixture(t *testing.T) (*Writer, *graph.MockClient) {
	t.Helper()
	mock := graph.NewMockClient()
	require.NoError(t, mock.Connect(context.Background()))
	return NewWriter(mock), mock
}

// TestWriter_UpsertAccount tests that accounts merge on their natural key.
func TestWriter_UpsertAccount(t *testing.T) {
	w, mock := newWriterFixture(t)
	ctx := context.Background()

	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"id": "u1"}}})

	err := w.UpsertAccount(ctx, Account{
		ID:                "u1",
		RiskTolerance:     RiskAggressive,
		InvestmentHorizon: HorizonLong,
	})
	require.NoError(t, err)

	calls := mock.CallsContaining("MERGE (a:Account")
	require.Len(t, calls, 1)
	assert.Equal(t, "Execute", calls[0].Method)
	assert.Equal(t, "u1", calls[0].Params["account_id"])
	assert.Equal(t, "aggressive", calls[0].Params["risk_tolerance"])
	assert.Equal(t, "long", calls[0].Params["investment_horizon"])
	// Upserts never CREATE the keyed node.
	assert.NotContains(t, calls[0].Cypher, "CREATE")
}

// TestWriter_UpsertAccount_Defaults tests the moderate/medium defaults.
func TestWriter_UpsertAccount_Defaults(t *testing.T) {
	w, mock := newWriterFixture(t)

	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"id": "u1"}}})

	err := w.UpsertAccount(context.Background(), Account{ID: "u1"})
	require.NoError(t, err)

	calls := mock.CallsContaining("MERGE (a:Account")
	require.Len(t, calls, 1)
	assert.Equal(t, "moderate", calls[0].Params["risk_tolerance"])
	assert.Equal(t, "medium", calls[0].Params["investment_horizon"])
}

// TestWriter_UpsertAccount_Invalid tests validation before any query runs.
func TestWriter_UpsertAccount_Invalid(t *testing.T) {
	w, mock := newWriterFixture(t)

	err := w.UpsertAccount(context.Background(), Account{ID: ""})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.DOMAIN_INVALID_ACCOUNT))

	err = w.UpsertAccount(context.Background(), Account{ID: "u1", RiskTolerance: "reckless"})
	require.Error(t, err)

	assert.Empty(t, mock.CallsContaining("MERGE"))
}

// TestWriter_UpsertInstrument tests the ticker-keyed merge.
func TestWriter_UpsertInstrument(t *testing.T) {
	w, mock := newWriterFixture(t)

	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"ticker": "AAPL"}}})

	err := w.UpsertInstrument(context.Background(), Instrument{
		Ticker:      "AAPL",
		CompanyName: "Apple Inc.",
		Sector:      "Technology",
	})
	require.NoError(t, err)

	calls := mock.CallsContaining("MERGE (s:Stock")
	require.Len(t, calls, 1)
	assert.Equal(t, "AAPL", calls[0].Params["ticker"])
	assert.Equal(t, "Apple Inc.", calls[0].Params["company_name"])
}

// TestWriter_RecordPrice tests the composite-key merge and the HAS_PRICE edge.
func TestWriter_RecordPrice(t *testing.T) {
	w, mock := newWriterFixture(t)

	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"date": "2026-08-28"}}})

	err := w.RecordPrice(context.Background(), PriceObservation{
		Ticker: "AAPL",
		Date:   "2026-08-28",
		Open:   230.1,
		Close:  232.5,
		High:   233.0,
		Low:    229.8,
		Volume: 51_000_000,
	})
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 2) // Connect + Execute
	cypher := calls[1].Cypher
	// Both the observation and its edge merge on the composite key, so
	// repeated calls can never duplicate either.
	assert.Contains(t, cypher, "MERGE (p:Price {stock_ticker: $ticker, date: $date})")
	assert.Contains(t, cypher, "MERGE (s)-[:HAS_PRICE]->(p)")
	assert.Equal(t, int64(51_000_000), calls[1].Params["volume"])
}

// TestWriter_RecordPrice_UnknownInstrument tests that a missing instrument is
// reported, not silently ignored.
func TestWriter_RecordPrice_UnknownInstrument(t *testing.T) {
	w, mock := newWriterFixture(t)

	// MATCH found nothing: engine returns zero rows.
	mock.AddResult(graph.QueryResult{Records: []map[string]any{}})

	err := w.RecordPrice(context.Background(), PriceObservation{
		Ticker: "ZZZZ",
		Date:   "2026-08-28",
	})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, ErrCodeInstrumentNotFound))
}

// TestWriter_AppendTransaction tests that appends CREATE and link both edges.
func TestWriter_AppendTransaction(t *testing.T) {
	w, mock := newWriterFixture(t)

	ts := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"timestamp": ts.Format(time.RFC3339Nano)}}})

	err := w.AppendTransaction(context.Background(), Transaction{
		AccountID: "u1",
		Ticker:    "AAPL",
		Type:      TransactionBuy,
		Amount:    10,
		Price:     232.5,
		Timestamp: &ts,
	})
	require.NoError(t, err)

	calls := mock.CallsContaining("CREATE (t:Transaction")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "CREATE (a)-[:MADE]->(t)")
	assert.Contains(t, calls[0].Cypher, "CREATE (t)-[:RELATES_TO]->(s)")
	// Appends never MERGE the ledger entry.
	assert.NotContains(t, calls[0].Cypher, "MERGE (t")
	assert.Equal(t, "BUY", calls[0].Params["type"])
	assert.Equal(t, ts.Format(time.RFC3339Nano), calls[0].Params["timestamp"])
}

// TestWriter_AppendTransaction_NotIdempotent tests that identical appends
// each issue their own CREATE.
func TestWriter_AppendTransaction_NotIdempotent(t *testing.T) {
	w, mock := newWriterFixture(t)
	ctx := context.Background()

	ts := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	tx := Transaction{
		AccountID: "u1",
		Ticker:    "AAPL",
		Type:      TransactionSell,
		Amount:    4,
		Price:     231.0,
		Timestamp: &ts,
	}

	for i := 0; i < 3; i++ {
		mock.AddResult(graph.QueryResult{Records: []map[string]any{{"timestamp": "x"}}})
		require.NoError(t, w.AppendTransaction(ctx, tx))
	}

	assert.Len(t, mock.CallsContaining("CREATE (t:Transaction"), 3)
}

// TestWriter_AppendTransaction_DefaultTimestamp tests ingestion-time default.
func TestWriter_AppendTransaction_DefaultTimestamp(t *testing.T) {
	w, mock := newWriterFixture(t)

	before := time.Now().UTC()
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"timestamp": "x"}}})

	err := w.AppendTransaction(context.Background(), Transaction{
		AccountID: "u1",
		Ticker:    "AAPL",
		Type:      TransactionBuy,
		Amount:    1,
		Price:     100,
	})
	require.NoError(t, err)

	calls := mock.CallsContaining("CREATE (t:Transaction")
	require.Len(t, calls, 1)

	stamped, err := time.Parse(time.RFC3339Nano, calls[0].Params["timestamp"].(string))
	require.NoError(t, err)
	assert.False(t, stamped.Before(before.Truncate(time.Second)))
}

// TestWriter_AppendTransaction_Invalid tests type and amount validation.
func TestWriter_AppendTransaction_Invalid(t *testing.T) {
	w, _ := newWriterFixture(t)
	ctx := context.Background()

	err := w.AppendTransaction(ctx, Transaction{AccountID: "u1", Ticker: "AAPL", Type: "HOLD", Amount: 1})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.DOMAIN_INVALID_TRANSACTION))

	err = w.AppendTransaction(ctx, Transaction{AccountID: "u1", Ticker: "AAPL", Type: TransactionBuy, Amount: 0})
	require.Error(t, err)

	err = w.AppendTransaction(ctx, Transaction{AccountID: "u1", Ticker: "AAPL", Type: TransactionBuy, Amount: -5})
	require.Error(t, err)
}

// TestWriter_Wipe tests the full-graph delete statement.
func TestWriter_Wipe(t *testing.T) {
	w, mock := newWriterFixture(t)

	require.NoError(t, w.Wipe(context.Background()))

	calls := mock.CallsContaining("DETACH DELETE")
	require.Len(t, calls, 1)
	assert.Equal(t, "Execute", calls[0].Method)
}

// TestWriter_ExportGraph tests the GraphML export call.
func TestWriter_ExportGraph(t *testing.T) {
	w, mock := newWriterFixture(t)

	require.NoError(t, w.ExportGraph(context.Background(), "out.graphml"))

	calls := mock.CallsContaining("apoc.export.graphml.all")
	require.Len(t, calls, 1)
	assert.Equal(t, "out.graphml", calls[0].Params["file_path"])
}
