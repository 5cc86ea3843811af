package theater

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPlayType is matched by every UnknownPlayTypeError.
	ErrUnknownPlayType = errors.New("unknown play type")
	// ErrUnknownPlay is returned when a performance references a play missing from the catalog.
	ErrUnknownPlay = errors.New("unknown play")
)

// UnknownPlayTypeError carries a genre tag outside the supported set.
type UnknownPlayTypeError struct {
	Type string
}

// Error implements the error interface.
func (e *UnknownPlayTypeError) Error() string {
	if e == nil {
		return ErrUnknownPlayType.Error()
	}
	return fmt.Sprintf("unknown type: %s", e.Type)
}

// Is reports whether target is ErrUnknownPlayType.
func (e *UnknownPlayTypeError) Is(target error) bool {
	return target == ErrUnknownPlayType
}

// Genre classifies a play and selects the pricing formula applied to it.
// The zero value is not a valid genre.
type Genre uint8

const (
	genreInvalid Genre = iota
	// GenreTragedy prices with a flat base plus a per-person rate past the threshold.
	GenreTragedy
	// GenreComedy adds an over-capacity surcharge and a flat per-attendee charge.
	GenreComedy
)

// ParseGenre maps a genre tag to its Genre. Tags match exactly: "TRAGEDY" or
// " comedy" are unknown types.
func ParseGenre(tag string) (Genre, error) {
	switch tag {
	case "tragedy":
		return GenreTragedy, nil
	case "comedy":
		return GenreComedy, nil
	default:
		return genreInvalid, &UnknownPlayTypeError{Type: tag}
	}
}

// Valid reports whether g is one of the supported genres.
func (g Genre) Valid() bool {
	switch g {
	case GenreTragedy, GenreComedy:
		return true
	default:
		return false
	}
}

// String returns the lowercase genre tag.
func (g Genre) String() string {
	switch g {
	case GenreTragedy:
		return "tragedy"
	case GenreComedy:
		return "comedy"
	default:
		return fmt.Sprintf("genre(%d)", uint8(g))
	}
}

// MarshalText encodes the genre as its tag.
func (g Genre) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, &UnknownPlayTypeError{Type: g.String()}
	}
	return []byte(g.String()), nil
}

// UnmarshalText decodes a genre tag, rejecting anything outside the supported set.
func (g *Genre) UnmarshalText(text []byte) error {
	parsed, err := ParseGenre(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
