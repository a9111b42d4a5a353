package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/types"
)

// Writer ingests domain entities into the investment graph. Upserts use
// MERGE on natural keys so re-invoking with the same key overwrites
// attributes without creating duplicates; transaction appends use CREATE
// because every call represents a distinct real-world event.
type Writer struct {
	client graph.Client
}

// NewWriter creates a new Writer with the given graph client.
func NewWriter(client graph.Client) *Writer {
	return &Writer{client: client}
}

// UpsertAccount creates or updates an account node keyed by account ID.
// Empty classification fields default to moderate/medium.
func (w *Writer) UpsertAccount(ctx context.Context, a Account) error {
	a.Normalize()
	if err := a.Validate(); err != nil {
		return err
	}

	cypher := `
		MERGE (a:Account {id: $account_id})
		SET a.risk_tolerance = $risk_tolerance,
		    a.investment_horizon = $investment_horizon
		RETURN a.id AS id
	`

	params := map[string]any{
		"account_id":         a.ID,
		"risk_tolerance":     string(a.RiskTolerance),
		"investment_horizon": string(a.InvestmentHorizon),
	}

	result, err := w.client.Execute(ctx, cypher, params)
	if err != nil {
		return types.WrapError(ErrCodeUpsertFailed,
			fmt.Sprintf("failed to upsert account %s", a.ID), err)
	}
	if len(result.Records) == 0 {
		return types.NewError(ErrCodeUpsertFailed,
			fmt.Sprintf("no result returned when upserting account %s", a.ID))
	}

	return nil
}

// UpsertInstrument creates or updates a stock node keyed by ticker.
func (w *Writer) UpsertInstrument(ctx context.Context, i Instrument) error {
	if err := i.Validate(); err != nil {
		return err
	}

	cypher := `
		MERGE (s:Stock {ticker: $ticker})
		SET s.company_name = $company_name,
		    s.sector = $sector
		RETURN s.ticker AS ticker
	`

	params := map[string]any{
		"ticker":       i.Ticker,
		"company_name": i.CompanyName,
		"sector":       i.Sector,
	}

	result, err := w.client.Execute(ctx, cypher, params)
	if err != nil {
		return types.WrapError(ErrCodeUpsertFailed,
			fmt.Sprintf("failed to upsert instrument %s", i.Ticker), err)
	}
	if len(result.Records) == 0 {
		return types.NewError(ErrCodeUpsertFailed,
			fmt.Sprintf("no result returned when upserting instrument %s", i.Ticker))
	}

	return nil
}

// RecordPrice upserts a price observation keyed by (ticker, date) and merges
// the HAS_PRICE edge from the instrument. Because both the node and the edge
// are MERGEd on the composite key, repeated calls overwrite OHLCV attributes
// and never duplicate the observation or its relationship.
func (w *Writer) RecordPrice(ctx context.Context, p PriceObservation) error {
	if err := p.Validate(); err != nil {
		return err
	}

	cypher := `
		MATCH (s:Stock {ticker: $ticker})
		MERGE (p:Price {stock_ticker: $ticker, date: $date})
		SET p.open = $open,
		    p.close = $close,
		    p.high = $high,
		    p.low = $low,
		    p.volume = $volume
		MERGE (s)-[:HAS_PRICE]->(p)
		RETURN p.date AS date
	`

	params := map[string]any{
		"ticker": p.Ticker,
		"date":   p.Date,
		"open":   p.Open,
		"close":  p.Close,
		"high":   p.High,
		"low":    p.Low,
		"volume": p.Volume,
	}

	result, err := w.client.Execute(ctx, cypher, params)
	if err != nil {
		return types.WrapError(ErrCodeUpsertFailed,
			fmt.Sprintf("failed to record price for %s on %s", p.Ticker, p.Date), err)
	}
	if len(result.Records) == 0 {
		// MATCH on the instrument found nothing; the observation was not stored.
		return types.NewError(ErrCodeInstrumentNotFound,
			fmt.Sprintf("instrument %s does not exist", p.Ticker))
	}

	return nil
}

// AppendTransaction records one ledger entry and links it from its account
// (MADE) and to its instrument (RELATES_TO). No idempotency is provided:
// calling twice with identical arguments produces two distinct entries.
func (w *Writer) AppendTransaction(ctx context.Context, t Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	timestamp := time.Now().UTC()
	if t.Timestamp != nil {
		timestamp = t.Timestamp.UTC()
	}

	cypher := `
		MATCH (a:Account {id: $account_id})
		MATCH (s:Stock {ticker: $ticker})
		CREATE (t:Transaction {
			type: $type,
			amount: $amount,
			price: $price,
			timestamp: $timestamp
		})
		CREATE (a)-[:MADE]->(t)
		CREATE (t)-[:RELATES_TO]->(s)
		RETURN t.timestamp AS timestamp
	`

	params := map[string]any{
		"account_id": t.AccountID,
		"ticker":     t.Ticker,
		"type":       string(t.Type),
		"amount":     t.Amount,
		"price":      t.Price,
		"timestamp":  timestamp.Format(time.RFC3339Nano),
	}

	result, err := w.client.Execute(ctx, cypher, params)
	if err != nil {
		return types.WrapError(ErrCodeAppendFailed,
			fmt.Sprintf("failed to append %s transaction for %s", t.Type, t.Ticker), err)
	}
	if len(result.Records) == 0 {
		// One of the two MATCHes found nothing; nothing was created.
		return types.NewError(ErrCodeAppendFailed,
			fmt.Sprintf("account %s or instrument %s does not exist", t.AccountID, t.Ticker))
	}

	return nil
}

// ExportGraph writes the full graph to a GraphML file via the engine's
// export extension. One-shot administrative operation.
func (w *Writer) ExportGraph(ctx context.Context, filePath string) error {
	cypher := `
		CALL apoc.export.graphml.all($file_path, {})
		YIELD file, nodes, relationships, properties
		RETURN file, nodes, relationships, properties
	`

	if _, err := w.client.Execute(ctx, cypher, map[string]any{"file_path": filePath}); err != nil {
		return types.WrapError(ErrCodeExportFailed,
			fmt.Sprintf("failed to export graph to %s", filePath), err)
	}
	return nil
}

// Wipe deletes every node and relationship in the database.
func (w *Writer) Wipe(ctx context.Context) error {
	if _, err := w.client.Execute(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return types.WrapError(ErrCodeWipeFailed, "failed to wipe graph", err)
	}
	return nil
}
