package entity

import "time"

// DefaultBaseCurrency is the base of the rate snapshot when none is requested.
const DefaultBaseCurrency = "RUB"

// DateLayout is the calendar date format stored in CurrencyRatesSnapshot.Date.
const DateLayout = "2006-01-02"

// CurrencyRatesSnapshot holds the exchange rates against Base for one day.
// Date is the day the snapshot was fetched, not the provider's quote date.
type CurrencyRatesSnapshot struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// IsFresh reports whether the snapshot was fetched on now's calendar date.
func (s CurrencyRatesSnapshot) IsFresh(now time.Time) bool {
	return s.Date == now.Format(DateLayout)
}

// RatesFor returns the rates of the given currencies that the snapshot knows about.
func (s CurrencyRatesSnapshot) RatesFor(currencies CurrencySet) map[string]float64 {
	out := make(map[string]float64, len(currencies))
	for ref := range currencies {
		if rate, ok := s.Rates[ref.Code]; ok {
			out[ref.Code] = rate
		}
	}
	return out
}
