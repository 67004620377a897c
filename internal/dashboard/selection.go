package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSingleSelection is returned when a single-value control receives
// zero or several countries.
var ErrSingleSelection = errors.New("exactly one country must be selected")

// Selection is the current value of one control.
//
// In JSON a selection is null, a single string, or an array of strings,
// matching what multi and single dropdowns post.
type Selection []string

// Single builds a one-country selection.
func Single(country string) Selection {
	return Selection{country}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Selection) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*s = Selection{}
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = Selection{one}
		return nil
	default:
		var many []string
		if err := json.Unmarshal(data, &many); err != nil {
			return fmt.Errorf("selection must be null, a string or an array of strings: %w", err)
		}
		*s = Selection(many)
		return nil
	}
}

// Countries returns the trimmed, non-empty names in order, without repeats.
func (s Selection) Countries() []string {
	out := make([]string, 0, len(s))
	seen := make(map[string]bool, len(s))
	for _, c := range s {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// One returns the single selected country.
func (s Selection) One() (string, error) {
	countries := s.Countries()
	if len(countries) != 1 {
		return "", fmt.Errorf("%w, got %d", ErrSingleSelection, len(countries))
	}
	return countries[0], nil
}

// Contains reports whether country is selected.
func (s Selection) Contains(country string) bool {
	for _, c := range s.Countries() {
		if c == country {
			return true
		}
	}
	return false
}
