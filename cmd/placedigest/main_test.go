package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countriesBody = `[{
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
}]`

const weatherBody = `{
	"main": {"temp": -3.5, "pressure": 1012, "humidity": 80},
	"wind": {"speed": 4.2},
	"weather": [{"description": "light snow"}],
	"visibility": 10000,
	"dt": 1710061200,
	"timezone": 10800
}`

const ratesBody = `{"success": true, "base": "RUB", "date": "2024-03-10", "rates": {"RUB": 1, "USD": 0.011}}`

const newsBody = `{"status": "ok", "totalResults": 1, "articles": [
	{"source": {"name": "Lenta"}, "author": "Ivanov", "title": "Snow in Moscow", "publishedAt": "2024-03-10T08:00:00Z"}
]}`

type providerStub struct {
	server        *httptest.Server
	countryCalls  atomic.Int32
	weatherCalls  atomic.Int32
	currencyCalls atomic.Int32
	newsCalls     atomic.Int32
}

func newProviderStub(t *testing.T) *providerStub {
	t.Helper()
	s := &providerStub{}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/countries/all":
			s.countryCalls.Add(1)
			_, _ = w.Write([]byte(countriesBody))
		case "/weather/weather":
			s.weatherCalls.Add(1)
			_, _ = w.Write([]byte(weatherBody))
		case "/currency/latest":
			s.currencyCalls.Add(1)
			_, _ = w.Write([]byte(ratesBody))
		case "/news/top-headlines":
			s.newsCalls.Add(1)
			_, _ = w.Write([]byte(newsBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.server.Close)
	return s
}

// setup writes a config pointing every provider at the stub and returns the base arguments.
func setup(t *testing.T, stub *providerStub, backend string) []string {
	t.Helper()
	for _, key := range []string{
		"PLACEDIGEST_STORE", "PLACEDIGEST_CACHE_DIR", "PLACEDIGEST_DATABASE_URL", "DATABASE_URL",
		"PLACEDIGEST_BASE_CURRENCY", "PLACEDIGEST_PARALLELISM", "PLACEDIGEST_HTTP_TIMEOUT",
		"PLACEDIGEST_NEWS_SOURCE", "PLACEDIGEST_RSS_URL", "PLACEDIGEST_LANG",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("WEATHER_API_KEY", "w-key")
	t.Setenv("CURRENCY_API_KEY", "c-key")
	t.Setenv("NEWS_API_KEY", "n-key")

	dir := t.TempDir()
	cfg := fmt.Sprintf(`store:
  backend: %s
  dir: %s
providers:
  countries:
    base_url: %[3]s/countries
  weather:
    base_url: %[3]s/weather
  currency:
    base_url: %[3]s/currency
  news:
    base_url: %[3]s/news
`, backend, filepath.Join(dir, "cache"), stub.server.URL)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	return []string{"-config", path, "-env", filepath.Join(dir, "missing.env")}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Find(t *testing.T) {
	stub := newProviderStub(t)
	base := setup(t, stub, "memory")

	code, out, errOut := runCLI(t, append(base, "find", "Moscow")...)
	require.Equal(t, 0, code, errOut)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	// Six table rows with their rules, then one headline.
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "Основное"))
	assert.Contains(t, out, "Страна: Russian Federation")
	assert.Contains(t, out, "Население страны: 146.599.183 чел.")
	assert.Contains(t, out, "Курсы валют: RUB = 1.00 руб.")
	assert.Equal(t, "Новость 1: Snow in Moscow | Ivanov | 2024-03-10T08:00:00Z", lines[12])

	assert.Equal(t, int32(1), stub.countryCalls.Load())
	assert.Equal(t, int32(1), stub.weatherCalls.Load())
	assert.Equal(t, int32(1), stub.currencyCalls.Load())
	assert.Equal(t, int32(1), stub.newsCalls.Load())
}

func TestRun_FileBackendReusesCache(t *testing.T) {
	stub := newProviderStub(t)
	base := setup(t, stub, "file")

	code, out, errOut := runCLI(t, append(base, "collect", "-places")...)
	require.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, "countries: 1, currency rates: "))
	assert.Contains(t, out, "weather: 1, news: 1")

	code, _, errOut = runCLI(t, append(base, "find", "russia")...)
	require.Equal(t, 0, code, errOut)

	assert.Equal(t, int32(1), stub.countryCalls.Load())
	assert.Equal(t, int32(1), stub.weatherCalls.Load())
	assert.Equal(t, int32(1), stub.newsCalls.Load())
	assert.Equal(t, int32(1), stub.currencyCalls.Load())

	code, _, errOut = runCLI(t, append(base, "refresh", "Moscow")...)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, int32(2), stub.weatherCalls.Load())
	assert.Equal(t, int32(2), stub.newsCalls.Load())
}

func TestRun_NotFound(t *testing.T) {
	stub := newProviderStub(t)
	base := setup(t, stub, "memory")

	code, out, errOut := runCLI(t, append(base, "find", "Atlantis")...)
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "no country matches")
}

func TestRun_Usage(t *testing.T) {
	stub := newProviderStub(t)
	base := setup(t, stub, "memory")

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"destroy"}},
		{"find without term", []string{"find"}},
		{"bad collect flag", []string{"collect", "-bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, append(append([]string{}, base...), tt.args...)...)
			assert.Equal(t, 2, code)
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	stub := newProviderStub(t)
	base := setup(t, stub, "memory")
	t.Setenv("PLACEDIGEST_STORE", "cassandra")

	code, _, errOut := runCLI(t, append(base, "find", "Moscow")...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown store backend")
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
