package theater

import (
	"errors"
	"strings"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

const invoicesJSON = `[
  {
    "customer": "BigCo",
    "performances": [
      {"playID": "hamlet", "audience": 55},
      {"playID": "as-like", "audience": 35},
      {"playID": "othello", "audience": 40}
    ]
  }
]`

const playsJSON = `{
  "hamlet": {"name": "Hamlet", "type": "tragedy"},
  "as-like": {"name": "As You Like It", "type": "comedy"},
  "othello": {"name": "Othello", "type": "tragedy"}
}`

func TestDecodeInvoices(t *testing.T) {
	invoices, err := DecodeInvoices(strings.NewReader(invoicesJSON))
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Equal(t, "BigCo", invoices[0].Customer)
	require.Len(t, invoices[0].Performances, 3)
	require.Equal(t, Performance{PlayID: "as-like", Audience: 35}, invoices[0].Performances[1])
}

func TestDecodeInvoicesRequiresPlayID(t *testing.T) {
	_, err := DecodeInvoices(strings.NewReader(`[{"customer":"BigCo","performances":[{"audience":3}]}]`))
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
}

func TestDecodeInvoicesKeepsNegativeAudience(t *testing.T) {
	invoices, err := DecodeInvoices(strings.NewReader(`[{"customer":"BigCo","performances":[{"playID":"hamlet","audience":-4}]}]`))
	require.NoError(t, err)
	require.Equal(t, -4, invoices[0].Performances[0].Audience)
}

func TestDecodePlays(t *testing.T) {
	plays, err := DecodePlays(strings.NewReader(playsJSON))
	require.NoError(t, err)
	require.Len(t, plays, 3)
	require.Equal(t, Play{Name: "As You Like It", Type: GenreComedy}, plays["as-like"])
}

func TestDecodePlaysUnknownGenre(t *testing.T) {
	_, err := DecodePlays(strings.NewReader(`{"henry-v":{"name":"Henry V","type":"history"}}`))
	require.Error(t, err)
	var typed *UnknownPlayTypeError
	require.True(t, errors.As(err, &typed))
	require.Equal(t, "history", typed.Type)
}

func TestDecodePlaysMissingGenre(t *testing.T) {
	_, err := DecodePlays(strings.NewReader(`{"henry-v":{"name":"Henry V"}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "henry-v")
}

func TestPlaysLookup(t *testing.T) {
	plays := Plays{"hamlet": {Name: "Hamlet", Type: GenreTragedy}}
	play, err := plays.Lookup("hamlet")
	require.NoError(t, err)
	require.Equal(t, "Hamlet", play.Name)

	_, err = plays.Lookup("macbeth")
	require.ErrorIs(t, err, ErrUnknownPlay)
	require.Contains(t, err.Error(), "macbeth")
}

func TestInvoicePlayIDs(t *testing.T) {
	inv := Invoice{Performances: []Performance{
		{PlayID: "hamlet"}, {PlayID: "othello"}, {PlayID: "hamlet"},
	}}
	require.Equal(t, []string{"hamlet", "othello"}, inv.PlayIDs())
}
