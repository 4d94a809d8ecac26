package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/cropdash/internal/config"
	"github.com/mamadbah2/cropdash/internal/domain/models"
)

const (
	currentPath  = "/data/2.5/weather"
	forecastPath = "/data/2.5/forecast"

	// MaxForecastPoints caps the forecast series handed to callers.
	MaxForecastPoints = 10

	forecastOK = "200"

	// defaultTimeout applies when configuration leaves the timeout unset.
	defaultTimeout = 10 * time.Second

	genericCurrentMessage  = "Não foi possível buscar o clima"
	genericForecastMessage = "Não foi possível buscar a previsão"
)

// Client exposes the OpenWeather queries used by the dashboard.
type Client interface {
	Current(ctx context.Context, apiKey, city string) (*models.WeatherSnapshot, error)
	Forecast(ctx context.Context, apiKey, city string) (models.ForecastSeries, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	units      string
	language   string
}

// NewClient builds an OpenWeather client from configuration. The API key is
// supplied per call since it comes from the request form.
func NewClient(cfg config.WeatherConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{
		httpClient: restyClient,
		units:      cfg.Units,
		language:   cfg.Language,
	}
}

// HTTPClient exposes the underlying transport client.
func (c *APIClient) HTTPClient() *http.Client {
	return c.httpClient.GetClient()
}

type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Message flexString `json:"message"`
}

type forecastResponse struct {
	Cod     flexString `json:"cod"`
	Message flexString `json:"message"`
	List    []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
	} `json:"list"`
}

// Current fetches the current conditions for city.
func (c *APIClient) Current(ctx context.Context, apiKey, city string) (*models.WeatherSnapshot, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(currentPath + "?" + c.query(apiKey, city))
	if err != nil {
		return nil, connectivityError(QueryCurrent, err)
	}

	var payload currentResponse
	decodeErr := json.Unmarshal(resp.Body(), &payload)

	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{
			Query:      QueryCurrent,
			StatusCode: resp.StatusCode(),
			Message:    messageOr(payload.Message, genericCurrentMessage),
		}
	}
	if decodeErr != nil {
		return nil, &APIError{Query: QueryCurrent, StatusCode: resp.StatusCode(), Message: genericCurrentMessage}
	}

	snapshot := &models.WeatherSnapshot{
		City:        payload.Name,
		Temperature: payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
	}
	if len(payload.Weather) > 0 {
		snapshot.Description = payload.Weather[0].Description
	}
	return snapshot, nil
}

// Forecast fetches the short-range forecast for city. The provider reports
// failure through the body "cod" field, so the HTTP status is not consulted.
func (c *APIClient) Forecast(ctx context.Context, apiKey, city string) (models.ForecastSeries, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(forecastPath + "?" + c.query(apiKey, city))
	if err != nil {
		return nil, connectivityError(QueryForecast, err)
	}

	var payload forecastResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, &APIError{Query: QueryForecast, StatusCode: resp.StatusCode(), Message: genericForecastMessage}
	}

	if string(payload.Cod) != forecastOK {
		return nil, &APIError{
			Query:      QueryForecast,
			StatusCode: resp.StatusCode(),
			Code:       string(payload.Cod),
			Message:    messageOr(payload.Message, genericForecastMessage),
		}
	}

	items := payload.List
	if len(items) > MaxForecastPoints {
		items = items[:MaxForecastPoints]
	}

	series := make(models.ForecastSeries, 0, len(items))
	for _, item := range items {
		series = append(series, models.ForecastPoint{
			Time:        item.DtTxt,
			Temperature: item.Main.Temp,
			Humidity:    item.Main.Humidity,
		})
	}
	return series, nil
}

func (c *APIClient) query(apiKey, city string) string {
	return fmt.Sprintf("q=%s&appid=%s&units=%s&lang=%s",
		EscapeCity(city),
		url.QueryEscape(apiKey),
		url.QueryEscape(c.units),
		url.QueryEscape(c.language),
	)
}

// EscapeCity percent-encodes a free-text city name, spaces included.
func EscapeCity(city string) string {
	return strings.ReplaceAll(url.QueryEscape(city), "+", "%20")
}

func messageOr(message flexString, fallback string) string {
	if strings.TrimSpace(string(message)) == "" {
		return fallback
	}
	return string(message)
}

// flexString accepts both JSON strings and numbers. OpenWeather mixes the two
// for "cod" and "message" depending on the endpoint and outcome.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}
