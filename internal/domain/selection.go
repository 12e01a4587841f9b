package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// VariantChoice is one (variant group, chosen variant) pair.
type VariantChoice struct {
	GroupID   uuid.UUID
	VariantID uuid.UUID
}

// VariantSelection is the set of variant choices that, together with an item id,
// identifies a stock-keeping unit. Choices are kept sorted by group id so two
// selections built in any order compare equal. The zero value is the empty selection.
type VariantSelection struct {
	choices []VariantChoice
}

// NewVariantSelection builds a selection from a group -> variant mapping.
func NewVariantSelection(m map[uuid.UUID]uuid.UUID) VariantSelection {
	if len(m) == 0 {
		return VariantSelection{}
	}
	choices := make([]VariantChoice, 0, len(m))
	for g, v := range m {
		choices = append(choices, VariantChoice{GroupID: g, VariantID: v})
	}
	slices.SortFunc(choices, func(a, b VariantChoice) int {
		return bytes.Compare(a.GroupID[:], b.GroupID[:])
	})
	return VariantSelection{choices: choices}
}

// Select builds a selection from pairs. A later pair for the same group wins.
func Select(pairs ...VariantChoice) VariantSelection {
	m := make(map[uuid.UUID]uuid.UUID, len(pairs))
	for _, p := range pairs {
		m[p.GroupID] = p.VariantID
	}
	return NewVariantSelection(m)
}

func (s VariantSelection) Len() int { return len(s.choices) }

func (s VariantSelection) IsEmpty() bool { return len(s.choices) == 0 }

// Choices returns a copy of the normalized pairs.
func (s VariantSelection) Choices() []VariantChoice {
	return slices.Clone(s.choices)
}

// Variant returns the variant chosen for groupID.
func (s VariantSelection) Variant(groupID uuid.UUID) (uuid.UUID, bool) {
	i, ok := slices.BinarySearchFunc(s.choices, groupID, func(c VariantChoice, g uuid.UUID) int {
		return bytes.Compare(c.GroupID[:], g[:])
	})
	if !ok {
		return uuid.Nil, false
	}
	return s.choices[i].VariantID, true
}

// Equal reports whether both selections hold exactly the same pairs.
func (s VariantSelection) Equal(o VariantSelection) bool {
	return slices.Equal(s.choices, o.choices)
}

// Key is a canonical string form, usable as a map key.
func (s VariantSelection) Key() string {
	var b strings.Builder
	for i, c := range s.choices {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.GroupID.String())
		b.WriteByte(':')
		b.WriteString(c.VariantID.String())
	}
	return b.String()
}

func (s VariantSelection) String() string { return "{" + s.Key() + "}" }

func (s VariantSelection) Map() map[uuid.UUID]uuid.UUID {
	m := make(map[uuid.UUID]uuid.UUID, len(s.choices))
	for _, c := range s.choices {
		m[c.GroupID] = c.VariantID
	}
	return m
}

// MarshalJSON encodes the selection as an object of group id -> variant id.
func (s VariantSelection) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(s.choices))
	for _, c := range s.choices {
		m[c.GroupID.String()] = c.VariantID.String()
	}
	return json.Marshal(m)
}

func (s *VariantSelection) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("variant selection: %w", err)
	}
	m := make(map[uuid.UUID]uuid.UUID, len(raw))
	for g, v := range raw {
		gid, err := uuid.Parse(g)
		if err != nil {
			return fmt.Errorf("variant selection group %q: %w", g, err)
		}
		vid, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("variant selection variant %q: %w", v, err)
		}
		m[gid] = vid
	}
	*s = NewVariantSelection(m)
	return nil
}

// Value stores the selection as a JSON object (jsonb column).
func (s VariantSelection) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *VariantSelection) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = VariantSelection{}
		return nil
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("variant selection: unsupported column type %T", src)
}
