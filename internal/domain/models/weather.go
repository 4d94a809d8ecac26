package models

// WeatherSnapshot holds current conditions for a city at fetch time.
type WeatherSnapshot struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature_c"`
	Humidity    int     `json:"humidity_pct"`
	Description string  `json:"description,omitempty"`
}

// ForecastPoint is one timestamped prediction from the provider feed.
type ForecastPoint struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature_c"`
	Humidity    int     `json:"humidity_pct"`
}

// ForecastSeries keeps the provider's chronological order.
type ForecastSeries []ForecastPoint

// WeatherQueryResult is the outcome of a single provider query. Exactly one of
// the payload or Err is set once the query was attempted.
type WeatherQueryResult[T any] struct {
	Data T     `json:"data,omitempty"`
	Err  error `json:"-"`
}

// OK reports whether the query succeeded.
func (r WeatherQueryResult[T]) OK() bool { return r.Err == nil }

// WeatherReport groups the two independent weather queries of one pass.
type WeatherReport struct {
	Skipped  bool                                 `json:"skipped"`
	Current  WeatherQueryResult[*WeatherSnapshot] `json:"current"`
	Forecast WeatherQueryResult[ForecastSeries]   `json:"forecast"`
}
