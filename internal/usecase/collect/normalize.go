package collect

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"place-digest/internal/domain/entity"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report wire field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode unmarshals raw into dst and validates it, mapping every failure to a NormalizationError.
func decode(entityName string, raw json.RawMessage, dst interface{}) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &entity.NormalizationError{Entity: entityName, Field: typeErr.Field, Err: err}
		}
		return &entity.NormalizationError{Entity: entityName, Err: err}
	}
	return validateStruct(entityName, dst)
}

// validateKey checks a location key before anything is fetched for it.
func validateKey(key entity.LocationKey) error {
	return validateStruct("location key", key)
}

func validateStruct(entityName string, v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := strings.SplitN(fe.Namespace(), ".", 2)
			path := fe.Field()
			if len(field) == 2 {
				path = field[1]
			}
			return &entity.NormalizationError{
				Entity: entityName,
				Field:  path,
				Err:    errors.New("failed on the '" + fe.Tag() + "' rule"),
			}
		}
		return &entity.NormalizationError{Entity: entityName, Err: err}
	}
	return nil
}

/* ───────── country ───────── */

type countryWire struct {
	Name         string    `json:"name" validate:"required"`
	Capital      string    `json:"capital" validate:"required"`
	Alpha2Code   string    `json:"alpha2Code" validate:"len=2,alpha"`
	AltSpellings []string  `json:"altSpellings"`
	Subregion    string    `json:"subregion"`
	Population   *int64    `json:"population" validate:"required,gte=0"`
	LatLng       []float64 `json:"latlng" validate:"omitempty,len=2"`
	Area         *float64  `json:"area"`
	Timezones    []string  `json:"timezones"`
	Currencies   []struct {
		Code string `json:"code"`
	} `json:"currencies"`
	Languages []struct {
		Name       string `json:"name"`
		NativeName string `json:"nativeName"`
	} `json:"languages"`
	Flag string `json:"flag"`
}

func normalizeCountry(raw json.RawMessage) (entity.CountryRecord, error) {
	var w countryWire
	if err := decode("country", raw, &w); err != nil {
		return entity.CountryRecord{}, err
	}

	key := entity.NewLocationKey(w.Capital, w.Alpha2Code)
	rec := entity.CountryRecord{
		Capital:      key.Capital,
		CountryCode:  key.CountryCode,
		Name:         w.Name,
		Subregion:    w.Subregion,
		AltSpellings: w.AltSpellings,
		Currencies:   entity.NewCurrencySet(),
		Languages:    entity.NewLanguageSet(),
		FlagURL:      w.Flag,
		Population:   *w.Population,
		Area:         w.Area,
		Timezones:    w.Timezones,
	}
	if rec.AltSpellings == nil {
		rec.AltSpellings = []string{}
	}
	if rec.Timezones == nil {
		rec.Timezones = []string{}
	}
	if len(w.LatLng) == 2 {
		lat, lng := w.LatLng[0], w.LatLng[1]
		rec.Latitude = &lat
		rec.Longitude = &lng
	}
	for _, c := range w.Currencies {
		// REST Countries lists some currencies without a code, e.g. "(none)".
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if len(code) != 3 {
			continue
		}
		rec.Currencies[entity.CurrencyRef{Code: code}] = struct{}{}
	}
	for _, l := range w.Languages {
		if l.Name == "" {
			continue
		}
		rec.Languages[entity.LanguageRef{Name: l.Name, NativeName: l.NativeName}] = struct{}{}
	}
	return rec, nil
}

/* ───────── currency ───────── */

type ratesWire struct {
	Base  string             `json:"base" validate:"required,len=3"`
	Rates map[string]float64 `json:"rates" validate:"required"`
}

// normalizeRates maps a rates payload into a snapshot for base dated today.
func normalizeRates(raw json.RawMessage, base string, today time.Time) (entity.CurrencyRatesSnapshot, error) {
	var w ratesWire
	if err := decode("currency rates", raw, &w); err != nil {
		return entity.CurrencyRatesSnapshot{}, err
	}
	if !strings.EqualFold(w.Base, base) {
		return entity.CurrencyRatesSnapshot{}, &entity.NormalizationError{
			Entity: "currency rates",
			Field:  "base",
			Err:    errors.New("provider answered for " + w.Base + " instead of " + base),
		}
	}
	return entity.CurrencyRatesSnapshot{
		Base:  base,
		Date:  today.Format(entity.DateLayout),
		Rates: w.Rates,
	}, nil
}

/* ───────── weather ───────── */

type weatherMain struct {
	Temp     *float64 `json:"temp" validate:"required"`
	Pressure *int     `json:"pressure" validate:"required"`
	Humidity *int     `json:"humidity" validate:"required"`
}

type weatherWind struct {
	Speed *float64 `json:"speed" validate:"required"`
}

type weatherCondition struct {
	Description string `json:"description"`
}

type weatherWire struct {
	Main       *weatherMain       `json:"main" validate:"required"`
	Wind       *weatherWind       `json:"wind" validate:"required"`
	Weather    []weatherCondition `json:"weather" validate:"required,min=1"`
	Visibility *int               `json:"visibility" validate:"required"`
	Dt         *int64             `json:"dt" validate:"required"`
	Timezone   *int               `json:"timezone" validate:"required"`
}

func normalizeWeather(raw json.RawMessage) (entity.WeatherRecord, error) {
	var w weatherWire
	if err := decode("weather", raw, &w); err != nil {
		return entity.WeatherRecord{}, err
	}
	// timezone is seconds east of UTC; the offset keeps whole hours only.
	return entity.WeatherRecord{
		Temp:           *w.Main.Temp,
		Pressure:       *w.Main.Pressure,
		Humidity:       *w.Main.Humidity,
		WindSpeed:      *w.Wind.Speed,
		Description:    w.Weather[0].Description,
		Visibility:     *w.Visibility,
		ObservedAt:     time.Unix(*w.Dt, 0).UTC(),
		UTCOffsetHours: *w.Timezone / 3600,
	}, nil
}

/* ───────── news ───────── */

type articleWire struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

func normalizeArticle(raw json.RawMessage) (entity.NewsItem, error) {
	var w articleWire
	if err := decode("news item", raw, &w); err != nil {
		return entity.NewsItem{}, err
	}
	return entity.NewsItem{
		Source:      w.Source.Name,
		Author:      w.Author,
		Title:       w.Title,
		Description: w.Description,
		URL:         w.URL,
		PublishedAt: w.PublishedAt,
	}, nil
}

// normalizePage maps a headlines page. One malformed article fails the whole page.
func normalizePage(raws []json.RawMessage) ([]entity.NewsItem, error) {
	items := make([]entity.NewsItem, 0, len(raws))
	for _, raw := range raws {
		it, err := normalizeArticle(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return entity.DedupNews(items), nil
}
