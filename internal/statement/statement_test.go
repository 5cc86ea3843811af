package statement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/theater-billing/internal/pricing"
	"github.com/noah-isme/theater-billing/internal/theater"
)

func referencePlays() theater.Plays {
	return theater.Plays{
		"hamlet":  {Name: "Hamlet", Type: theater.GenreTragedy},
		"as-like": {Name: "As You Like It", Type: theater.GenreComedy},
		"othello": {Name: "Othello", Type: theater.GenreTragedy},
	}
}

func TestRenderReferenceInvoice(t *testing.T) {
	inv := theater.Invoice{
		Customer: "BigCo",
		Performances: []theater.Performance{
			{PlayID: "hamlet", Audience: 55},
			{PlayID: "as-like", Audience: 35},
			{PlayID: "othello", Audience: 40},
		},
	}

	got, err := NewRenderer().Render(inv, referencePlays())
	require.NoError(t, err)

	want := "Statement for BigCo\n" +
		"  Hamlet: $650.00 (55 seats)\n" +
		"  As You Like It: $580.00 (35 seats)\n" +
		"  Othello: $500.00 (40 seats)\n" +
		"Amount owed is $1,730.00\n" +
		"You earned 47 credits\n"
	require.Equal(t, want, got)
}

func TestRenderSingleTragedy(t *testing.T) {
	inv := theater.Invoice{Customer: "BigCo", Performances: []theater.Performance{{PlayID: "hamlet", Audience: 55}}}
	got, err := NewRenderer().Render(inv, referencePlays())
	require.NoError(t, err)
	require.Equal(t, "Statement for BigCo\n  Hamlet: $650.00 (55 seats)\nAmount owed is $650.00\nYou earned 25 credits\n", got)
}

func TestRenderSingleComedy(t *testing.T) {
	inv := theater.Invoice{Customer: "BigCo", Performances: []theater.Performance{{PlayID: "as-like", Audience: 35}}}
	got, err := NewRenderer().Render(inv, referencePlays())
	require.NoError(t, err)
	require.Equal(t, "Statement for BigCo\n  As You Like It: $580.00 (35 seats)\nAmount owed is $580.00\nYou earned 12 credits\n", got)
}

func TestRenderNoPerformances(t *testing.T) {
	got, err := NewRenderer().Render(theater.Invoice{Customer: "Empty Ltd"}, theater.Plays{})
	require.NoError(t, err)
	require.Equal(t, "Statement for Empty Ltd\nAmount owed is $0.00\nYou earned 0 credits\n", got)
}

func TestRenderUnknownGenreAborts(t *testing.T) {
	plays := referencePlays()
	plays["henry-v"] = theater.Play{Name: "Henry V"}
	inv := theater.Invoice{
		Customer: "BigCo",
		Performances: []theater.Performance{
			{PlayID: "hamlet", Audience: 55},
			{PlayID: "henry-v", Audience: 53},
		},
	}

	got, err := NewRenderer().Render(inv, plays)
	require.Empty(t, got)
	require.True(t, errors.Is(err, theater.ErrUnknownPlayType))
	var typed *theater.UnknownPlayTypeError
	require.True(t, errors.As(err, &typed))
}

func TestRenderUnknownPlayAborts(t *testing.T) {
	inv := theater.Invoice{Customer: "BigCo", Performances: []theater.Performance{{PlayID: "macbeth", Audience: 12}}}
	got, err := NewRenderer().Render(inv, referencePlays())
	require.Empty(t, got)
	require.ErrorIs(t, err, theater.ErrUnknownPlay)
}

func TestBuildPreservesOrderAndTotals(t *testing.T) {
	inv := theater.Invoice{
		Customer: "BigCo",
		Performances: []theater.Performance{
			{PlayID: "othello", Audience: 40},
			{PlayID: "hamlet", Audience: 55},
			{PlayID: "othello", Audience: 40},
		},
	}
	st, err := NewRenderer().Build(inv, referencePlays())
	require.NoError(t, err)
	require.Len(t, st.Lines, 3)
	require.Equal(t, []string{"othello", "hamlet", "othello"}, []string{st.Lines[0].PlayID, st.Lines[1].PlayID, st.Lines[2].PlayID})
	require.Equal(t, pricing.Money(50000+65000+50000), st.TotalAmount)
	require.Equal(t, 10+25+10, st.TotalCredits)
	require.Len(t, inv.Performances, 3)
}

func TestRendererCustomRulesAndFormatter(t *testing.T) {
	rules := pricing.DefaultRules()
	rules.TragedyBaseAmount = 1000
	rules.CentsPerUnit = 10
	r := Renderer{Rules: rules, Format: func(v float64) string { return "<" + USD(v) + ">" }}

	inv := theater.Invoice{Customer: "Tiny", Performances: []theater.Performance{{PlayID: "hamlet", Audience: 1}}}
	got, err := r.Render(inv, referencePlays())
	require.NoError(t, err)
	require.Equal(t, "Statement for Tiny\n  Hamlet: <$100.00> (1 seats)\nAmount owed is <$100.00>\nYou earned 0 credits\n", got)
}

func TestTextDefaultsFormatter(t *testing.T) {
	r := Renderer{Rules: pricing.DefaultRules()}
	got := r.Text(Statement{Customer: "Nil Format", TotalAmount: 123456789})
	require.Equal(t, "Statement for Nil Format\nAmount owed is $1,234,567.89\nYou earned 0 credits\n", got)
}

func TestBuildRejectsInvalidRules(t *testing.T) {
	inv := theater.Invoice{Customer: "BigCo", Performances: []theater.Performance{{PlayID: "as-like", Audience: 35}}}

	rules := pricing.DefaultRules()
	rules.ComedyCreditDivisor = 0
	got, err := Renderer{Rules: rules, Format: USD}.Render(inv, referencePlays())
	require.Empty(t, got)
	require.ErrorIs(t, err, pricing.ErrInvalidCreditDivisor)

	rules = pricing.DefaultRules()
	rules.CentsPerUnit = -1
	_, err = Renderer{Rules: rules}.Build(inv, referencePlays())
	require.ErrorIs(t, err, pricing.ErrInvalidCentsPerUnit)

	_, err = Renderer{}.Build(inv, referencePlays())
	require.Error(t, err)
}
