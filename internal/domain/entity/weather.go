package entity

import "time"

// WeatherRecord is the current weather at a location's capital.
// Temperatures are in °C, wind speed in m/s, visibility in meters.
type WeatherRecord struct {
	Temp           float64   `json:"temp"`
	Pressure       int       `json:"pressure"`
	Humidity       int       `json:"humidity"`
	WindSpeed      float64   `json:"wind_speed"`
	Description    string    `json:"description"`
	Visibility     int       `json:"visibility"`
	ObservedAt     time.Time `json:"observed_at"`
	UTCOffsetHours int       `json:"utc_offset_hours"`
}

// LocalTime returns the observation time at the location's UTC offset.
func (w WeatherRecord) LocalTime() time.Time {
	offset := w.UTCOffsetHours * 3600
	return w.ObservedAt.In(time.FixedZone("", offset))
}
