package collect

import (
	"context"
	"encoding/json"
	"sync"
)

type fakeCountryProvider struct {
	raws  []json.RawMessage
	err   error
	calls int
}

func (f *fakeCountryProvider) FetchCountries(context.Context) ([]json.RawMessage, error) {
	f.calls++
	return f.raws, f.err
}

type fakeWeatherProvider struct {
	mu        sync.Mutex
	responses map[string]json.RawMessage
	errs      map[string]error
	calls     map[string]int
}

func newFakeWeatherProvider() *fakeWeatherProvider {
	return &fakeWeatherProvider{
		responses: map[string]json.RawMessage{},
		errs:      map[string]error{},
		calls:     map[string]int{},
	}
}

func (f *fakeWeatherProvider) FetchWeather(ctx context.Context, capital string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[capital]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.errs[capital]; err != nil {
		return nil, err
	}
	return f.responses[capital], nil
}

func (f *fakeWeatherProvider) callCount(capital string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[capital]
}

type fakeCurrencyProvider struct {
	raw   json.RawMessage
	err   error
	bases []string
}

func (f *fakeCurrencyProvider) FetchRates(_ context.Context, base string) (json.RawMessage, error) {
	f.bases = append(f.bases, base)
	return f.raw, f.err
}

type fakeNewsProvider struct {
	mu    sync.Mutex
	pages map[string][]json.RawMessage
	calls map[string]int
}

func (f *fakeNewsProvider) FetchHeadlines(_ context.Context, countryCode string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[countryCode]++
	return f.pages[countryCode], nil
}

const russiaJSON = `{
	"name": "Russian Federation",
	"capital": "Moscow",
	"alpha2Code": "RU",
	"altSpellings": ["RU", "Rossiya", "Russia"],
	"subregion": "Eastern Europe",
	"population": 146599183,
	"latlng": [60, 100],
	"area": 17124442,
	"timezones": ["UTC+03:00"],
	"currencies": [{"code": "RUB"}],
	"languages": [{"name": "Russian", "nativeName": "Русский"}],
	"flag": "https://restcountries.eu/data/rus.svg"
}`

const franceJSON = `{
	"name": "France",
	"capital": "Paris",
	"alpha2Code": "FR",
	"population": 66710000,
	"currencies": [{"code": "EUR"}],
	"languages": [{"name": "French", "nativeName": "français"}]
}`

const moscowWeatherJSON = `{
	"main": {"temp": -3.5, "pressure": 1012, "humidity": 80},
	"wind": {"speed": 4.2},
	"weather": [{"description": "light snow"}],
	"visibility": 10000,
	"dt": 1710061200,
	"timezone": 10800
}`

func raws(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		out = append(out, json.RawMessage(d))
	}
	return out
}
