package theater

import "fmt"

// Play is a catalog entry describing a play and its genre.
type Play struct {
	Name string `json:"name" validate:"required"`
	Type Genre  `json:"type" validate:"required"`
}

// Performance is one booked showing of a play.
type Performance struct {
	PlayID   string `json:"playID" validate:"required"`
	Audience int    `json:"audience"`
}

// Invoice is a customer's bill. Performances are rendered in slice order.
type Invoice struct {
	Customer     string        `json:"customer"`
	Performances []Performance `json:"performances" validate:"dive"`
}

// PlayIDs returns the distinct play identifiers referenced by the invoice in first-seen order.
func (inv Invoice) PlayIDs() []string {
	seen := make(map[string]struct{}, len(inv.Performances))
	ids := make([]string, 0, len(inv.Performances))
	for _, perf := range inv.Performances {
		if _, ok := seen[perf.PlayID]; ok {
			continue
		}
		seen[perf.PlayID] = struct{}{}
		ids = append(ids, perf.PlayID)
	}
	return ids
}

// Catalog resolves play identifiers to plays.
type Catalog interface {
	Lookup(playID string) (Play, error)
}

// Plays is an in-memory catalog keyed by play identifier.
type Plays map[string]Play

// Lookup implements Catalog.
func (p Plays) Lookup(playID string) (Play, error) {
	play, ok := p[playID]
	if !ok {
		return Play{}, fmt.Errorf("%w: %s", ErrUnknownPlay, playID)
	}
	return play, nil
}
