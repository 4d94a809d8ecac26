package weather

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/cropdash/internal/domain/models"
	client "github.com/mamadbah2/cropdash/pkg/clients/openweather"
)

// Service fetches current conditions and the forecast for one city.
type Service struct {
	client client.Client
	logger *zap.Logger
}

// NewService wires a weather service instance.
func NewService(c client.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: c, logger: logger}
}

// Fetch runs both provider queries. An empty key or city skips them entirely.
// Each query keeps its own outcome; one failing never cancels the other.
func (s *Service) Fetch(ctx context.Context, apiKey, city string) models.WeatherReport {
	apiKey = strings.TrimSpace(apiKey)
	city = strings.TrimSpace(city)
	if apiKey == "" || city == "" || s.client == nil {
		return models.WeatherReport{Skipped: true}
	}

	var report models.WeatherReport
	// Errors are recorded in the report; every goroutine returns nil.
	var g errgroup.Group

	g.Go(func() error {
		snapshot, err := s.client.Current(ctx, apiKey, city)
		if err != nil {
			s.logger.Warn("current weather query failed", zap.String("city", city), zap.Error(err))
		}
		report.Current = models.WeatherQueryResult[*models.WeatherSnapshot]{Data: snapshot, Err: err}
		return nil
	})

	g.Go(func() error {
		series, err := s.client.Forecast(ctx, apiKey, city)
		if err != nil {
			s.logger.Warn("forecast query failed", zap.String("city", city), zap.Error(err))
		}
		report.Forecast = models.WeatherQueryResult[models.ForecastSeries]{Data: series, Err: err}
		return nil
	})

	_ = g.Wait()
	return report
}
