package pricing

import (
	"errors"

	"github.com/noah-isme/theater-billing/internal/theater"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Reference pricing parameters. Amounts are in cents.
const (
	DefaultTragedyBaseAmount             Money = 40000
	DefaultTragedyAudienceThreshold            = 30
	DefaultTragedyOverThresholdPerPerson Money = 1000

	DefaultComedyBaseAmount             Money = 30000
	DefaultComedyAudienceThreshold            = 20
	DefaultComedyOverThresholdSurcharge Money = 10000
	DefaultComedyOverThresholdPerPerson Money = 500
	DefaultComedyPerAudience            Money = 300

	DefaultCreditAudienceThreshold = 30
	DefaultComedyCreditDivisor     = 5

	DefaultCentsPerUnit = 100
)

var (
	// ErrInvalidCreditDivisor is returned when the comedy credit divisor is not positive.
	ErrInvalidCreditDivisor = errors.New("comedy credit divisor must be positive")
	// ErrInvalidCentsPerUnit is returned when the minor-to-major unit factor is not positive.
	ErrInvalidCentsPerUnit = errors.New("cents per unit must be positive")
)

// Rules carries every parameter of the per-genre pricing and credit formulas.
// A Rules value is never mutated by the engine and is safe to share.
type Rules struct {
	TragedyBaseAmount             Money
	TragedyAudienceThreshold      int
	TragedyOverThresholdPerPerson Money

	ComedyBaseAmount             Money
	ComedyAudienceThreshold      int
	ComedyOverThresholdSurcharge Money
	ComedyOverThresholdPerPerson Money
	ComedyPerAudience            Money

	CreditAudienceThreshold int
	ComedyCreditDivisor     int

	CentsPerUnit int
}

// Quote is the charge and loyalty credits for a single performance.
type Quote struct {
	Amount  Money
	Credits int
}

// DefaultRules returns the reference box-office parameters.
func DefaultRules() Rules {
	return Rules{
		TragedyBaseAmount:             DefaultTragedyBaseAmount,
		TragedyAudienceThreshold:      DefaultTragedyAudienceThreshold,
		TragedyOverThresholdPerPerson: DefaultTragedyOverThresholdPerPerson,
		ComedyBaseAmount:              DefaultComedyBaseAmount,
		ComedyAudienceThreshold:       DefaultComedyAudienceThreshold,
		ComedyOverThresholdSurcharge:  DefaultComedyOverThresholdSurcharge,
		ComedyOverThresholdPerPerson:  DefaultComedyOverThresholdPerPerson,
		ComedyPerAudience:             DefaultComedyPerAudience,
		CreditAudienceThreshold:       DefaultCreditAudienceThreshold,
		ComedyCreditDivisor:           DefaultComedyCreditDivisor,
		CentsPerUnit:                  DefaultCentsPerUnit,
	}
}

// Validate rejects parameter sets that would make the formulas undefined.
func (r Rules) Validate() error {
	if r.ComedyCreditDivisor <= 0 {
		return ErrInvalidCreditDivisor
	}
	if r.CentsPerUnit <= 0 {
		return ErrInvalidCentsPerUnit
	}
	return nil
}

// AmountFor computes the amount owed in cents for a performance of the given genre.
func (r Rules) AmountFor(genre theater.Genre, audience int) (Money, error) {
	switch genre {
	case theater.GenreTragedy:
		amount := r.TragedyBaseAmount
		if audience > r.TragedyAudienceThreshold {
			amount += Money(audience-r.TragedyAudienceThreshold) * r.TragedyOverThresholdPerPerson
		}
		return amount, nil
	case theater.GenreComedy:
		amount := r.ComedyBaseAmount
		if audience > r.ComedyAudienceThreshold {
			amount += r.ComedyOverThresholdSurcharge +
				Money(audience-r.ComedyAudienceThreshold)*r.ComedyOverThresholdPerPerson
		}
		amount += r.ComedyPerAudience * Money(audience)
		return amount, nil
	default:
		return 0, &theater.UnknownPlayTypeError{Type: genre.String()}
	}
}

// VolumeCreditsFor computes the loyalty credits earned by a performance.
// The genre is not validated: unsupported genres earn only the base credits.
func (r Rules) VolumeCreditsFor(genre theater.Genre, audience int) int {
	credits := max(audience-r.CreditAudienceThreshold, 0)
	if genre == theater.GenreComedy && r.ComedyCreditDivisor > 0 {
		credits += floorDiv(audience, r.ComedyCreditDivisor)
	}
	return credits
}

// Charge computes both the amount and the credits for a performance.
func (r Rules) Charge(genre theater.Genre, audience int) (Quote, error) {
	amount, err := r.AmountFor(genre, audience)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Amount: amount, Credits: r.VolumeCreditsFor(genre, audience)}, nil
}

// ToMajorUnits converts cents to major currency units for presentation.
func (r Rules) ToMajorUnits(amount Money) float64 {
	factor := r.CentsPerUnit
	if factor <= 0 {
		factor = DefaultCentsPerUnit
	}
	return float64(amount) / float64(factor)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
