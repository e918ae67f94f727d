package render

// Labels holds every user-visible string of a rendered report.
type Labels struct {
	Main       string
	Country    string
	Capital    string
	Region     string
	Languages  string
	Population string
	People     string

	Geo       string
	Longitude string
	Latitude  string
	Area      string
	AreaUnit  string

	Weather     string
	Temperature string
	WindSpeed   string
	WindUnit    string
	Visibility  string
	Meters      string
	Description string

	Extra     string
	Rates     string
	RateUnit  string
	LocalTime string
	TimeZone  string

	News    string
	NoNews  string
	Missing string
}

// Russian is the default label set.
var Russian = Labels{
	Main:       "Основное",
	Country:    "Страна",
	Capital:    "Столица",
	Region:     "Регион",
	Languages:  "Языки",
	Population: "Население страны",
	People:     "чел.",

	Geo:       "География",
	Longitude: "Долгота",
	Latitude:  "Широта",
	Area:      "Площадь страны",
	AreaUnit:  "км^2",

	Weather:     "Погода",
	Temperature: "Температура",
	WindSpeed:   "Скорость ветра",
	WindUnit:    "м/c",
	Visibility:  "Видимость",
	Meters:      "метров",
	Description: "Характеристика",

	Extra:     "Доп.инфо",
	Rates:     "Курсы валют",
	RateUnit:  "руб.",
	LocalTime: "Местное время",
	TimeZone:  "Часовой пояс",

	News:    "Новость",
	NoNews:  "К сожалению, новостей нет",
	Missing: "н/д",
}

var English = Labels{
	Main:       "Main",
	Country:    "Country",
	Capital:    "Capital",
	Region:     "Region",
	Languages:  "Languages",
	Population: "Population",
	People:     "people",

	Geo:       "Geography",
	Longitude: "Longitude",
	Latitude:  "Latitude",
	Area:      "Area",
	AreaUnit:  "km^2",

	Weather:     "Weather",
	Temperature: "Temperature",
	WindSpeed:   "Wind speed",
	WindUnit:    "m/s",
	Visibility:  "Visibility",
	Meters:      "meters",
	Description: "Conditions",

	Extra:     "Extra",
	Rates:     "Currency rates",
	RateUnit:  "RUB",
	LocalTime: "Local time",
	TimeZone:  "Time zone",

	News:    "News",
	NoNews:  "No news available",
	Missing: "n/a",
}

// LabelsFor returns the label set of a language code, falling back to Russian.
func LabelsFor(lang string) Labels {
	if lang == "en" {
		return English
	}
	return Russian
}
