// Package statement aggregates priced performances and renders customer statements.
package statement

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"

	"github.com/noah-isme/theater-billing/internal/pricing"
	"github.com/noah-isme/theater-billing/internal/theater"
)

// Line is one priced performance of a statement.
type Line struct {
	PlayID   string
	PlayName string
	Genre    theater.Genre
	Audience int
	Amount   pricing.Money
	Credits  int
}

// Statement holds the values derived from an invoice.
type Statement struct {
	Customer     string
	Lines        []Line
	TotalAmount  pricing.Money
	TotalCredits int
}

// Renderer prices invoices and renders statements. It holds no mutable state.
// Currency names the ISO unit Format renders; the zero value means USD.
type Renderer struct {
	Rules    pricing.Rules
	Format   Formatter
	Currency currency.Unit
}

// NewRenderer returns a Renderer using the reference rules and USD formatting.
func NewRenderer() Renderer {
	return Renderer{Rules: pricing.DefaultRules(), Format: USD, Currency: currency.USD}
}

// CurrencyCode returns the ISO code of the statement currency.
func (r Renderer) CurrencyCode() string {
	if r.Currency == (currency.Unit{}) {
		return currency.USD.String()
	}
	return r.Currency.String()
}

// Build prices every performance of the invoice in order and sums the totals.
// Invalid rules, the first unresolved play or an unsupported genre abort the
// whole statement.
func (r Renderer) Build(inv theater.Invoice, catalog theater.Catalog) (Statement, error) {
	if err := r.Rules.Validate(); err != nil {
		return Statement{}, fmt.Errorf("pricing rules: %w", err)
	}
	st := Statement{
		Customer: inv.Customer,
		Lines:    make([]Line, 0, len(inv.Performances)),
	}
	for _, perf := range inv.Performances {
		play, err := catalog.Lookup(perf.PlayID)
		if err != nil {
			return Statement{}, err
		}
		quote, err := r.Rules.Charge(play.Type, perf.Audience)
		if err != nil {
			return Statement{}, fmt.Errorf("price %s: %w", perf.PlayID, err)
		}
		st.Lines = append(st.Lines, Line{
			PlayID:   perf.PlayID,
			PlayName: play.Name,
			Genre:    play.Type,
			Audience: perf.Audience,
			Amount:   quote.Amount,
			Credits:  quote.Credits,
		})
		st.TotalAmount += quote.Amount
		st.TotalCredits += quote.Credits
	}
	return st, nil
}

// Render builds the statement for the invoice and returns its text form.
func (r Renderer) Render(inv theater.Invoice, catalog theater.Catalog) (string, error) {
	st, err := r.Build(inv, catalog)
	if err != nil {
		return "", err
	}
	return r.Text(st), nil
}

// Text renders an already built statement.
func (r Renderer) Text(st Statement) string {
	format := r.Format
	if format == nil {
		format = USD
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Statement for %s\n", st.Customer)
	for _, line := range st.Lines {
		fmt.Fprintf(&b, "  %s: %s (%d seats)\n", line.PlayName, format(r.Rules.ToMajorUnits(line.Amount)), line.Audience)
	}
	fmt.Fprintf(&b, "Amount owed is %s\n", format(r.Rules.ToMajorUnits(st.TotalAmount)))
	fmt.Fprintf(&b, "You earned %d credits\n", st.TotalCredits)
	return b.String()
}
