package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidNotation reports dart input that cannot be parsed.
var ErrInvalidNotation = errors.New("invalid dart notation")

// Throw is a parsed dart entry, not yet resolved against a state.
type Throw struct {
	Kind  Kind
	Value int
}

// ParseThrow reads dart notation: "20" or "S20" single, "D20" double,
// "T20" triple, "25"/"SB" single bull, "50"/"DB" double bull, "M"/"0" miss.
// Numbers are not range-checked here; the engine rejects them with
// ErrInvalidTarget so the caller reports one message for both paths.
func ParseThrow(input string) (Throw, error) {
	text := strings.ToUpper(strings.TrimSpace(input))
	switch text {
	case "":
		return Throw{}, fmt.Errorf("%w: empty input", ErrInvalidNotation)
	case "M", "MISS", "0":
		return Throw{Kind: Miss}, nil
	case "SB", "BULL", "25":
		return Throw{Kind: Bullseye, Value: 1}, nil
	case "DB", "50":
		return Throw{Kind: Bullseye, Value: 2}, nil
	}

	kind := Single
	digits := text
	switch text[0] {
	case 'S':
		digits = text[1:]
	case 'D':
		kind = Double
		digits = text[1:]
	case 'T':
		kind = Triple
		digits = text[1:]
	}
	number, err := strconv.Atoi(digits)
	if err != nil {
		return Throw{}, fmt.Errorf("%w: %q", ErrInvalidNotation, input)
	}
	return Throw{Kind: kind, Value: number}, nil
}

// Notation returns the short form of a dart as accepted by ParseThrow.
func Notation(d Dart) string {
	switch d.Kind {
	case Miss:
		return "M"
	case Bullseye:
		if d.Value == 2 {
			return "DB"
		}
		return "SB"
	case Double:
		return "D" + strconv.Itoa(d.Value)
	case Triple:
		return "T" + strconv.Itoa(d.Value)
	default:
		return strconv.Itoa(d.Value)
	}
}

// FormatDart describes a resolved dart for turn summaries.
func FormatDart(d Dart) string {
	switch {
	case d.Kind == Miss:
		return "Miss"
	case d.ScoredAsCircle:
		return fmt.Sprintf("%s %d (circle)", d.Kind, d.Value)
	case d.Kind == Bullseye:
		if d.Value == 2 {
			return "Double Bull (50)"
		}
		return "Single Bull (25)"
	case d.ScoredAsCategory:
		return fmt.Sprintf("%s Category", d.Kind)
	default:
		return fmt.Sprintf("%s %d", d.Kind, d.Value)
	}
}
