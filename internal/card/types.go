// Package card models trading-card records and turns them into normalized
// corpus documents: name normalization, rule-based synergy tagging,
// evolution-chain resolution, and canonical text rendering.
package card

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Expansion is one structured input source: a named batch of card records.
// Missing sections decode as empty slices.
type Expansion struct {
	Pokemon    []Pokemon `json:"pokemon"`
	Supporters []Trainer `json:"supporters"`
	Items      []Trainer `json:"items"`
	Tools      []Trainer `json:"tools"`
}

// ParseExpansion decodes raw expansion JSON. Unknown keys are ignored; a
// payload that is not a JSON object is an error.
func ParseExpansion(raw []byte) (Expansion, error) {
	var exp Expansion
	if err := json.Unmarshal(raw, &exp); err != nil {
		return Expansion{}, fmt.Errorf("failed to parse expansion data: %w", err)
	}
	return exp, nil
}

// Pokemon is a creature card record.
type Pokemon struct {
	Name        string    `json:"name"`
	Types       []string  `json:"types"`
	Stage       string    `json:"stage"`
	HP          Field     `json:"hp"`
	Retreat     Field     `json:"retreat"`
	Weakness    Field     `json:"weakness"`
	EvolvesFrom string    `json:"evolves_from"`
	Abilities   Abilities `json:"abilities"`
	Attacks     []Attack  `json:"attacks"`
}

// Trainer is a supporter, item, or tool card record.
type Trainer struct {
	Name   string `json:"name"`
	Effect string `json:"effect"`
}

// Ability is one named (or anonymous) ability.
type Ability struct {
	Name string
	Text string
}

// Abilities decodes the heterogeneous ability list found in raw card data:
// entries are either plain strings (anonymous abilities) or objects mapping
// ability name to text. Multi-key objects expand to one Ability per pair,
// sorted by name so rendering stays deterministic.
type Abilities []Ability

// UnmarshalJSON implements json.Unmarshaler.
func (a *Abilities) UnmarshalJSON(data []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("abilities must be a list: %w", err)
	}

	out := make(Abilities, 0, len(entries))
	for _, entry := range entries {
		var text string
		if err := json.Unmarshal(entry, &text); err == nil {
			out = append(out, Ability{Text: text})
			continue
		}

		var named map[string]string
		if err := json.Unmarshal(entry, &named); err != nil {
			return fmt.Errorf("ability must be a string or name-to-text object: %w", err)
		}
		names := make([]string, 0, len(named))
		for name := range named {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, Ability{Name: name, Text: named[name]})
		}
	}
	*a = out
	return nil
}

// Attack is one attack on a creature card.
type Attack struct {
	Name   string `json:"name"`
	Cost   Field  `json:"cost"`
	Damage Damage `json:"damage"`
	Effect string `json:"effect"`
}

// Field is a card attribute that may appear in raw data as a string, a
// number, or a list of either. It renders joined by " | " and is present
// iff non-empty.
type Field []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = nil
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		out := make(Field, 0, len(list))
		for _, item := range list {
			s, err := scalarString(item)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*f = out
		return nil
	}

	s, err := scalarString(data)
	if err != nil {
		return err
	}
	if s == "" {
		*f = nil
		return nil
	}
	*f = Field{s}
	return nil
}

// Damage is an attack's printed damage. Zero is a real value, so presence
// is tracked separately from the rendering.
type Damage struct {
	Value string
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler. Null and the empty string
// decode as absent; a numeric zero does not.
func (d *Damage) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Damage{}
		return nil
	}
	s, err := scalarString(data)
	if err != nil {
		return err
	}
	if s == "" {
		*d = Damage{}
		return nil
	}
	*d = Damage{Value: s, Valid: true}
	return nil
}

// scalarString decodes a JSON string or number into its text form.
func scalarString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", data)
	}
	return n.String(), nil
}
