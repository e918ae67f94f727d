package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"place-digest/internal/domain/entity"
)

// German grouping uses '.' as the thousands separator.
var groupPrinter = message.NewPrinter(language.German)

func formatPopulation(n int64) string {
	return groupPrinter.Sprintf("%d", n)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r *Renderer) optionalFloat(v *float64) string {
	if v == nil {
		return r.labels.Missing
	}
	return formatFloat(*v)
}

// formatRates renders rates sorted by code, each rounded half-up to two decimals.
func formatRates(rates map[string]float64, unit string) string {
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		value := decimal.NewFromFloat(rates[code]).StringFixed(2)
		parts = append(parts, fmt.Sprintf("%s = %s %s", code, value, unit))
	}
	return strings.Join(parts, ", ")
}

func formatLanguages(langs entity.LanguageSet) string {
	sorted := langs.Sorted()
	parts := make([]string, 0, len(sorted))
	for _, l := range sorted {
		parts = append(parts, fmt.Sprintf("%s (%s)", l.Name, l.NativeName))
	}
	return strings.Join(parts, ", ")
}

func formatOffset(hours int) string {
	if hours < 0 {
		return fmt.Sprintf("UTC - %d", -hours)
	}
	return fmt.Sprintf("UTC + %d", hours)
}

func (r *Renderer) orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return r.labels.Missing
	}
	return s
}
