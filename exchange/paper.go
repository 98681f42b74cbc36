package exchange

import (
	"context"

	"github.com/rustyeddy/regimebot/market"
	"github.com/rustyeddy/regimebot/pkg/id"
)

// Paper is the simulation-mode collaborator: synthetic balances, orders that
// never leave the process. Market data still comes from a real MarketData
// source so paper runs see real prices.
type Paper struct {
	quote   string
	balance float64
}

// NewPaper creates a paper account holding `balance` of the quote currency
// and nothing else.
func NewPaper(quote string, balance float64) *Paper {
	return &Paper{quote: quote, balance: balance}
}

func (p *Paper) Balances(ctx context.Context) (map[string]Balance, error) {
	return map[string]Balance{
		p.quote: {Free: p.balance, Total: p.balance},
	}, nil
}

// SubmitMarketOrder pretends to fill instantly and returns a locally
// generated id.
func (p *Paper) SubmitMarketOrder(ctx context.Context, pair string, side market.Side, qty float64) (string, error) {
	return id.New(), nil
}

func (p *Paper) CancelOrder(ctx context.Context, id string) error {
	return nil
}
