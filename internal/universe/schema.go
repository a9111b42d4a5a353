package universe

import (
	"fmt"
	"time"

	"github.com/ngudow/SMP-graph/internal/types"
)

// Node labels and relationship types used by the investment graph.
const (
	LabelAccount = "Account"
	LabelStock   = "Stock"
	LabelPrice   = "Price"
	LabelFactor  = "Factor"

	RelMade           = "MADE"
	RelRelatesTo      = "RELATES_TO"
	RelHasPrice       = "HAS_PRICE"
	RelCorrelatesWith = "CORRELATES_WITH"
	RelAffectedBy     = "AFFECTED_BY"
)

// RiskTolerance classifies an account's appetite for volatility.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// IsValid checks if the RiskTolerance is a valid value.
func (r RiskTolerance) IsValid() bool {
	switch r {
	case RiskConservative, RiskModerate, RiskAggressive:
		return true
	default:
		return false
	}
}

// InvestmentHorizon classifies how long an account intends to hold positions.
type InvestmentHorizon string

const (
	HorizonShort  InvestmentHorizon = "short"
	HorizonMedium InvestmentHorizon = "medium"
	HorizonLong   InvestmentHorizon = "long"
)

// IsValid checks if the InvestmentHorizon is a valid value.
func (h InvestmentHorizon) IsValid() bool {
	switch h {
	case HorizonShort, HorizonMedium, HorizonLong:
		return true
	default:
		return false
	}
}

// TransactionType is the direction of a ledger entry. Amount sign is implied
// by the type and never stored signed.
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// IsValid checks if the TransactionType is a valid value.
func (t TransactionType) IsValid() bool {
	return t == TransactionBuy || t == TransactionSell
}

// Account is an investment account, upserted by its natural key ID.
type Account struct {
	ID                string
	RiskTolerance     RiskTolerance
	InvestmentHorizon InvestmentHorizon
}

// Normalize fills empty classification fields with their defaults.
func (a *Account) Normalize() {
	if a.RiskTolerance == "" {
		a.RiskTolerance = RiskModerate
	}
	if a.InvestmentHorizon == "" {
		a.InvestmentHorizon = HorizonMedium
	}
}

// Validate checks that the account has a key and valid classifications.
func (a *Account) Validate() error {
	if a.ID == "" {
		return types.NewError(types.DOMAIN_INVALID_ACCOUNT, "account ID cannot be empty")
	}
	if !a.RiskTolerance.IsValid() {
		return types.NewError(types.DOMAIN_INVALID_ACCOUNT,
			fmt.Sprintf("invalid risk tolerance: %s", a.RiskTolerance))
	}
	if !a.InvestmentHorizon.IsValid() {
		return types.NewError(types.DOMAIN_INVALID_ACCOUNT,
			fmt.Sprintf("invalid investment horizon: %s", a.InvestmentHorizon))
	}
	return nil
}

// Instrument is a tradable security, upserted by ticker.
type Instrument struct {
	Ticker      string
	CompanyName string
	Sector      string
}

// Validate checks that the instrument has its natural key.
func (i *Instrument) Validate() error {
	if i.Ticker == "" {
		return types.NewError(types.DOMAIN_INVALID_INSTRUMENT, "ticker cannot be empty")
	}
	return nil
}

// PriceObservation is one day of OHLCV data for an instrument, keyed by the
// composite (ticker, date).
type PriceObservation struct {
	Ticker string
	Date   string // ISO date, e.g. "2026-08-31"
	Open   float64
	Close  float64
	High   float64
	Low    float64
	Volume int64
}

// Validate checks that the observation carries its composite key.
func (p *PriceObservation) Validate() error {
	if p.Ticker == "" {
		return types.NewError(types.DOMAIN_INVALID_PRICE, "ticker cannot be empty")
	}
	if p.Date == "" {
		return types.NewError(types.DOMAIN_INVALID_PRICE, "date cannot be empty")
	}
	return nil
}

// Transaction is one ledger entry. There is no natural key: every append
// creates a fresh entry, even for identical arguments. Timestamp is optional
// and defaults to ingestion time, which is not safely replayable.
type Transaction struct {
	AccountID string
	Ticker    string
	Type      TransactionType
	Amount    float64
	Price     float64
	Timestamp *time.Time
}

// Validate checks the transaction's references and type.
func (t *Transaction) Validate() error {
	if t.AccountID == "" {
		return types.NewError(types.DOMAIN_INVALID_TRANSACTION, "account ID cannot be empty")
	}
	if t.Ticker == "" {
		return types.NewError(types.DOMAIN_INVALID_TRANSACTION, "ticker cannot be empty")
	}
	if !t.Type.IsValid() {
		return types.NewError(types.DOMAIN_INVALID_TRANSACTION,
			fmt.Sprintf("invalid transaction type: %s", t.Type))
	}
	if t.Amount <= 0 {
		return types.NewError(types.DOMAIN_INVALID_TRANSACTION, "amount must be positive")
	}
	return nil
}

// Position is one net holding in a portfolio: net shares is the sum of BUY
// amounts minus SELL amounts, and only strictly positive positions appear.
type Position struct {
	Ticker  string
	Shares  float64
	Company string
	Sector  string
}

// PricePoint is one closing price in a price history.
type PricePoint struct {
	Date  string
	Close float64
}

// Correlation is a derived correlates-with edge read back from the graph.
type Correlation struct {
	Ticker   string
	Strength float64
}

// RiskProfile summarizes portfolio-level risk derived from correlation edges.
type RiskProfile struct {
	AvgVolatility   float64
	SectorDiversity int64
}
