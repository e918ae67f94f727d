package report

import (
	"strings"

	"place-digest/internal/domain/entity"
)

const (
	tierNone = iota
	tierSubstring
	tierAltSpelling
	tierExact
)

// matchTier ranks how well term (already lower-cased and trimmed) names country.
func matchTier(term string, c entity.CountryRecord) int {
	name := strings.ToLower(c.Name)
	capital := strings.ToLower(c.Capital)
	if name == term || capital == term {
		return tierExact
	}
	for _, alt := range c.AltSpellings {
		if strings.ToLower(alt) == term {
			return tierAltSpelling
		}
	}
	if strings.Contains(name, term) || strings.Contains(capital, term) {
		return tierSubstring
	}
	return tierNone
}

// bestMatch returns the highest ranked country for term; ties keep directory order.
func bestMatch(term string, directory []entity.CountryRecord) (entity.CountryRecord, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entity.CountryRecord{}, false
	}

	best, bestTier := -1, tierNone
	for i, c := range directory {
		tier := matchTier(term, c)
		if tier > bestTier {
			best, bestTier = i, tier
			if tier == tierExact {
				break
			}
		}
	}
	if best < 0 {
		return entity.CountryRecord{}, false
	}
	return directory[best], true
}
