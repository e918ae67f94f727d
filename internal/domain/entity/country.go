package entity

import (
	"encoding/json"
	"sort"
)

// CurrencyRef references a currency by its ISO 4217 code.
type CurrencyRef struct {
	Code string `json:"code"`
}

// LanguageRef references a language by its English and native names.
type LanguageRef struct {
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

// CurrencySet is a set of currencies. Duplicate entries collapse to one.
type CurrencySet map[CurrencyRef]struct{}

// NewCurrencySet builds a set from the given references.
func NewCurrencySet(refs ...CurrencyRef) CurrencySet {
	s := make(CurrencySet, len(refs))
	for _, r := range refs {
		s[r] = struct{}{}
	}
	return s
}

// Contains reports whether code is in the set.
func (s CurrencySet) Contains(code string) bool {
	_, ok := s[CurrencyRef{Code: code}]
	return ok
}

// Sorted returns the members ordered by code.
func (s CurrencySet) Sorted() []CurrencyRef {
	out := make([]CurrencyRef, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// MarshalJSON encodes the set as an array sorted by code, or null for a nil set.
func (s CurrencySet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of references into the set. null yields a nil set.
func (s *CurrencySet) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var refs []CurrencyRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return err
	}
	*s = NewCurrencySet(refs...)
	return nil
}

// LanguageSet is a set of languages. Duplicate entries collapse to one.
type LanguageSet map[LanguageRef]struct{}

// NewLanguageSet builds a set from the given references.
func NewLanguageSet(refs ...LanguageRef) LanguageSet {
	s := make(LanguageSet, len(refs))
	for _, r := range refs {
		s[r] = struct{}{}
	}
	return s
}

// Sorted returns the members ordered by name, then native name.
func (s LanguageSet) Sorted() []LanguageRef {
	out := make([]LanguageRef, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].NativeName < out[j].NativeName
	})
	return out
}

// MarshalJSON encodes the set as a sorted array, or null for a nil set.
func (s LanguageSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of references into the set. null yields a nil set.
func (s *LanguageSet) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var refs []LanguageRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return err
	}
	*s = NewLanguageSet(refs...)
	return nil
}

// CountryRecord is one entry of the country directory.
// The directory is reference data: it is collected explicitly and read many times.
type CountryRecord struct {
	Capital      string      `json:"capital"`
	CountryCode  string      `json:"country_code"`
	Name         string      `json:"name"`
	Subregion    string      `json:"subregion"`
	AltSpellings []string    `json:"alt_spellings"`
	Currencies   CurrencySet `json:"currencies"`
	Languages    LanguageSet `json:"languages"`
	FlagURL      string      `json:"flag_url"`
	Population   int64       `json:"population"`
	Area         *float64    `json:"area,omitempty"`
	Longitude    *float64    `json:"longitude,omitempty"`
	Latitude     *float64    `json:"latitude,omitempty"`
	Timezones    []string    `json:"timezones"`
}

// Key returns the location key of the country's capital.
func (c CountryRecord) Key() LocationKey {
	return LocationKey{Capital: c.Capital, CountryCode: c.CountryCode}
}
