package entity

// CompositeReport is the merged view of one location, assembled on demand and never persisted.
//
// Weather is nil when no weather record could be collected. News is nil when no
// news record exists for the location, which is distinct from an empty page.
type CompositeReport struct {
	Location      CountryRecord
	Weather       *WeatherRecord
	CurrencyRates map[string]float64
	News          []NewsItem
}
