package models

import "strings"

// Pokemon is one catalog entry. ID follows the national Pokedex numbering
// supplied by the importer. Stat, size and media columns are nullable.
type Pokemon struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Type1       string  `json:"type1"`
	Type2       *string `json:"type2,omitempty"`
	HP          *int32  `json:"hp,omitempty"`
	Attack      *int32  `json:"attack,omitempty"`
	Defense     *int32  `json:"defense,omitempty"`
	SpAttack    *int32  `json:"sp_attack,omitempty"`
	SpDefense   *int32  `json:"sp_defense,omitempty"`
	Speed       *int32  `json:"speed,omitempty"`
	Height      *int32  `json:"height,omitempty"` // decimetres
	Weight      *int32  `json:"weight,omitempty"` // hectograms
	SpriteURL   *string `json:"sprite_url,omitempty"`
	Description *string `json:"description,omitempty"`
}

// DisplayName returns the name with its first letter upper-cased.
func (p Pokemon) DisplayName() string {
	return Capitalize(p.Name)
}

func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// PokemonFilter narrows a catalog query. A nil ID and empty NameContains
// match every entry.
type PokemonFilter struct {
	ID           *int64
	NameContains string
}
