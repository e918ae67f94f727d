// Package render formats composite reports as a four column text table
// followed by a short headlines block.
package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"place-digest/internal/domain/entity"
)

// MaxNews is the number of headlines shown under the table.
const MaxNews = 3

// cells measures text in terminal cells. Ambiguous-width runes such as
// Cyrillic letters and '°' count as one cell regardless of the locale.
var cells = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// Renderer turns reports into output lines. It holds no state beyond its labels.
type Renderer struct {
	labels Labels
}

func New(labels Labels) *Renderer {
	return &Renderer{labels: labels}
}

// Render returns the table rows followed by the news lines. Each table row
// carries its rule line after a newline.
func (r *Renderer) Render(report *entity.CompositeReport) []string {
	if report == nil {
		return nil
	}

	columns := [][]string{
		r.mainSection(report.Location),
		r.geoSection(report.Location),
		r.weatherSection(report.Weather),
		r.extraSection(report),
	}
	lines := table(columns)

	if report.News == nil {
		return append(lines, r.labels.NoNews)
	}
	for i, item := range report.News {
		if i == MaxNews {
			break
		}
		lines = append(lines, fmt.Sprintf("%s %d: %s | %s | %s",
			r.labels.News, i+1,
			r.orMissing(item.Title),
			r.orMissing(item.Author),
			r.orMissing(item.PublishedAt)))
	}
	return lines
}

func (r *Renderer) mainSection(c entity.CountryRecord) []string {
	l := r.labels
	return []string{
		l.Main,
		fmt.Sprintf("%s: %s", l.Country, r.orMissing(c.Name)),
		fmt.Sprintf("%s: %s", l.Capital, r.orMissing(c.Capital)),
		fmt.Sprintf("%s: %s", l.Region, r.orMissing(c.Subregion)),
		fmt.Sprintf("%s: %s", l.Languages, r.orMissing(formatLanguages(c.Languages))),
		fmt.Sprintf("%s: %s %s", l.Population, formatPopulation(c.Population), l.People),
	}
}

func (r *Renderer) geoSection(c entity.CountryRecord) []string {
	l := r.labels
	area := r.labels.Missing
	if c.Area != nil {
		area = formatFloat(*c.Area) + " " + l.AreaUnit
	}
	return []string{
		l.Geo,
		fmt.Sprintf("%s: %s", l.Longitude, r.optionalFloat(c.Longitude)),
		fmt.Sprintf("%s: %s", l.Latitude, r.optionalFloat(c.Latitude)),
		fmt.Sprintf("%s: %s", l.Area, area),
	}
}

func (r *Renderer) weatherSection(w *entity.WeatherRecord) []string {
	l := r.labels
	if w == nil {
		return []string{
			l.Weather,
			fmt.Sprintf("%s: %s", l.Temperature, l.Missing),
			fmt.Sprintf("%s: %s", l.WindSpeed, l.Missing),
			fmt.Sprintf("%s: %s", l.Visibility, l.Missing),
			fmt.Sprintf("%s: %s", l.Description, l.Missing),
		}
	}
	return []string{
		l.Weather,
		fmt.Sprintf("%s: %s °C", l.Temperature, formatFloat(w.Temp)),
		fmt.Sprintf("%s: %s %s", l.WindSpeed, formatFloat(w.WindSpeed), l.WindUnit),
		fmt.Sprintf("%s: %d %s", l.Visibility, w.Visibility, l.Meters),
		fmt.Sprintf("%s: %s", l.Description, r.orMissing(w.Description)),
	}
}

func (r *Renderer) extraSection(report *entity.CompositeReport) []string {
	l := r.labels
	localTime, offset := l.Missing, l.Missing
	if w := report.Weather; w != nil {
		localTime = w.LocalTime().Format("15:04")
		offset = formatOffset(w.UTCOffsetHours)
	}
	return []string{
		l.Extra,
		fmt.Sprintf("%s: %s", l.Rates, r.orMissing(formatRates(report.CurrencyRates, l.RateUnit))),
		fmt.Sprintf("%s: %s", l.LocalTime, localTime),
		fmt.Sprintf("%s: %s", l.TimeZone, offset),
	}
}

// table lays columns side by side. A column is as wide as its longest cell
// in terminal cells plus one for the separator; shorter columns pad with blanks.
func table(columns [][]string) []string {
	widths := make([]int, len(columns))
	rows := 0
	for i, col := range columns {
		for _, cell := range col {
			if w := cells.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
		widths[i]++
		if len(col) > rows {
			rows = len(col)
		}
	}

	var rule strings.Builder
	for _, w := range widths {
		rule.WriteString(strings.Repeat("-", w-1))
		rule.WriteByte('|')
	}

	lines := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		for i, col := range columns {
			cell := ""
			if row < len(col) {
				cell = col[row]
			}
			b.WriteString(cells.FillRight(cell, widths[i]-1))
			b.WriteByte('|')
		}
		b.WriteByte('\n')
		b.WriteString(rule.String())
		lines = append(lines, b.String())
	}
	return lines
}
