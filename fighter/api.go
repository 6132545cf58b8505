package fighter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// APIFighter is a fighter record as served by the boxing data API. Missing sections
// decode as nil and map to zero stats.
type APIFighter struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Age      float64   `json:"age"`
	Reach    string    `json:"reach"` // e.g. `71.7" / 182 cm`
	Division *Division `json:"division"`
	Stats    *Stats    `json:"stats"`
}

type Division struct {
	Name     string  `json:"name"`
	WeightLb float64 `json:"weight_lb"`
}

type Stats struct {
	Wins       float64 `json:"wins"`
	Losses     float64 `json:"losses"`
	Draws      float64 `json:"draws"`
	TotalBouts float64 `json:"total_bouts"`
	KOWins     float64 `json:"ko_wins"`
}

// FromAPI maps an API record onto a Profile. Weight comes from the division limit and
// knockouts from ko_wins.
func FromAPI(a APIFighter) Profile {
	p := Profile{
		Name:  a.Name,
		Age:   a.Age,
		Reach: ParseReach(a.Reach),
	}
	if a.Division != nil {
		p.Weight = a.Division.WeightLb
	}
	if a.Stats != nil {
		p.Wins = a.Stats.Wins
		p.Losses = a.Stats.Losses
		p.Knockouts = a.Stats.KOWins
		p.Bouts = a.Stats.TotalBouts
	}
	return p
}

// DecodeAPIList reads either a bare JSON array of fighters or the paginated
// {"data": [...]} envelope.
func DecodeAPIList(r io.Reader) ([]APIFighter, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("fighter: empty roster")
	}

	var list []APIFighter
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("fighter: decode roster: %w", err)
		}
		return list, nil
	}

	var envelope struct {
		Data []APIFighter `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("fighter: decode roster: %w", err)
	}
	return envelope.Data, nil
}

// Select picks fighters by name from a roster. Empty names fall back to the first and
// second entries.
func Select(roster []APIFighter, nameA, nameB string) (Profile, Profile, error) {
	if len(roster) < 2 && (nameA == "" || nameB == "") {
		return Profile{}, Profile{}, fmt.Errorf("fighter: roster has %d fighters, need 2", len(roster))
	}
	a, err := pick(roster, nameA, 0)
	if err != nil {
		return Profile{}, Profile{}, err
	}
	b, err := pick(roster, nameB, 1)
	if err != nil {
		return Profile{}, Profile{}, err
	}
	return FromAPI(a), FromAPI(b), nil
}

func pick(roster []APIFighter, name string, fallback int) (APIFighter, error) {
	if name == "" {
		return roster[fallback], nil
	}
	for _, f := range roster {
		if f.Name == name {
			return f, nil
		}
	}
	return APIFighter{}, fmt.Errorf("fighter: %q not in roster", name)
}
