package theater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	validator "github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the structural requirements of an invoice. Audience counts are not inspected.
func (inv Invoice) Validate() error {
	return validate.Struct(inv)
}

// Validate checks that every play carries a name and a supported genre.
func (p Plays) Validate() error {
	for id, play := range p {
		if id == "" {
			return errors.New("play with empty identifier")
		}
		if err := validate.Struct(play); err != nil {
			return fmt.Errorf("play %s: %w", id, err)
		}
	}
	return nil
}

// DecodeInvoices reads a JSON array of invoices.
func DecodeInvoices(r io.Reader) ([]Invoice, error) {
	var invoices []Invoice
	if err := json.NewDecoder(r).Decode(&invoices); err != nil {
		return nil, fmt.Errorf("decode invoices: %w", err)
	}
	for i, inv := range invoices {
		if err := inv.Validate(); err != nil {
			return nil, fmt.Errorf("invoice %d: %w", i, err)
		}
	}
	return invoices, nil
}

// DecodePlays reads a JSON object mapping play identifiers to plays.
func DecodePlays(r io.Reader) (Plays, error) {
	plays := Plays{}
	if err := json.NewDecoder(r).Decode(&plays); err != nil {
		return nil, fmt.Errorf("decode plays: %w", err)
	}
	if err := plays.Validate(); err != nil {
		return nil, err
	}
	return plays, nil
}
