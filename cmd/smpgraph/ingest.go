package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ngudow/SMP-graph/internal/universe"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest domain entities into the graph",
	Long: `Ingest accounts, instruments, price observations, and transactions.

Accounts, instruments and prices are upserts keyed on their natural identity:
repeating a call with the same key overwrites attributes without creating
duplicates. Transactions are append-only: every call creates a fresh ledger
entry.`,
}

var (
	accountRisk    string
	accountHorizon string
)

var ingestAccountCmd = &cobra.Command{
	Use:   "account ID",
	Short: "Create or update an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			account := universe.Account{
				ID:                args[0],
				RiskTolerance:     universe.RiskTolerance(accountRisk),
				InvestmentHorizon: universe.InvestmentHorizon(accountHorizon),
			}
			if err := a.writer.UpsertAccount(ctx, account); err != nil {
				return err
			}
			fmt.Printf("account %s upserted\n", account.ID)
			return nil
		})
	},
}

var (
	instrumentCompany string
	instrumentSector  string
)

var ingestInstrumentCmd = &cobra.Command{
	Use:   "instrument TICKER",
	Short: "Create or update an instrument",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			instrument := universe.Instrument{
				Ticker:      args[0],
				CompanyName: instrumentCompany,
				Sector:      instrumentSector,
			}
			if err := a.writer.UpsertInstrument(ctx, instrument); err != nil {
				return err
			}
			fmt.Printf("instrument %s upserted\n", instrument.Ticker)
			return nil
		})
	},
}

var (
	priceDate   string
	priceOpen   float64
	priceClose  float64
	priceHigh   float64
	priceLow    float64
	priceVolume int64
)

var ingestPriceCmd = &cobra.Command{
	Use:   "price TICKER",
	Short: "Record a price observation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			obs := universe.PriceObservation{
				Ticker: args[0],
				Date:   priceDate,
				Open:   priceOpen,
				Close:  priceClose,
				High:   priceHigh,
				Low:    priceLow,
				Volume: priceVolume,
			}
			if err := a.writer.RecordPrice(ctx, obs); err != nil {
				return err
			}
			fmt.Printf("price for %s on %s recorded\n", obs.Ticker, obs.Date)
			return nil
		})
	},
}

var (
	txAccount   string
	txType      string
	txAmount    float64
	txPrice     float64
	txTimestamp string
)

var ingestTransactionCmd = &cobra.Command{
	Use:   "transaction TICKER",
	Short: "Append a transaction to the ledger",
	Long: `Append a BUY or SELL ledger entry for an account and instrument.

Each call creates a distinct entry, even with identical arguments. When
--timestamp is omitted the ingestion time is used, which is not safely
replayable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			tx := universe.Transaction{
				AccountID: txAccount,
				Ticker:    args[0],
				Type:      universe.TransactionType(txType),
				Amount:    txAmount,
				Price:     txPrice,
			}

			if txTimestamp != "" {
				ts, err := time.Parse(time.RFC3339, txTimestamp)
				if err != nil {
					return fmt.Errorf("invalid --timestamp (want RFC3339): %w", err)
				}
				tx.Timestamp = &ts
			}

			if err := a.writer.AppendTransaction(ctx, tx); err != nil {
				return err
			}
			fmt.Printf("%s %v %s recorded for account %s\n", tx.Type, tx.Amount, tx.Ticker, tx.AccountID)
			return nil
		})
	},
}

func init() {
	ingestAccountCmd.Flags().StringVar(&accountRisk, "risk", "moderate", "risk tolerance: conservative, moderate, aggressive")
	ingestAccountCmd.Flags().StringVar(&accountHorizon, "horizon", "medium", "investment horizon: short, medium, long")

	ingestInstrumentCmd.Flags().StringVar(&instrumentCompany, "company", "", "company name")
	ingestInstrumentCmd.Flags().StringVar(&instrumentSector, "sector", "", "sector")

	ingestPriceCmd.Flags().StringVar(&priceDate, "date", "", "observation date (YYYY-MM-DD)")
	ingestPriceCmd.Flags().Float64Var(&priceOpen, "open", 0, "opening price")
	ingestPriceCmd.Flags().Float64Var(&priceClose, "close", 0, "closing price")
	ingestPriceCmd.Flags().Float64Var(&priceHigh, "high", 0, "daily high")
	ingestPriceCmd.Flags().Float64Var(&priceLow, "low", 0, "daily low")
	ingestPriceCmd.Flags().Int64Var(&priceVolume, "volume", 0, "traded volume")
	ingestPriceCmd.MarkFlagRequired("date")

	ingestTransactionCmd.Flags().StringVar(&txAccount, "account", "", "account ID")
	ingestTransactionCmd.Flags().StringVar(&txType, "type", "", "transaction type: BUY or SELL")
	ingestTransactionCmd.Flags().Float64Var(&txAmount, "amount", 0, "number of shares")
	ingestTransactionCmd.Flags().Float64Var(&txPrice, "price", 0, "execution price")
	ingestTransactionCmd.Flags().StringVar(&txTimestamp, "timestamp", "", "event timestamp (RFC3339, defaults to now)")
	ingestTransactionCmd.MarkFlagRequired("account")
	ingestTransactionCmd.MarkFlagRequired("type")

	ingestCmd.AddCommand(ingestAccountCmd)
	ingestCmd.AddCommand(ingestInstrumentCmd)
	ingestCmd.AddCommand(ingestPriceCmd)
	ingestCmd.AddCommand(ingestTransactionCmd)
}
