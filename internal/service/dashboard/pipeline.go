package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropdash/internal/domain/models"
	"github.com/mamadbah2/cropdash/internal/service/efficiency"
	"github.com/mamadbah2/cropdash/internal/service/harvest"
	"github.com/mamadbah2/cropdash/internal/service/phenology"
	"github.com/mamadbah2/cropdash/pkg/clients/openweather"
)

const msgUploadHarvest = "Envie uma planilha de colheita para gerar relatórios completos."

// HarvestLoader turns an upload or a sheet range into a HarvestSet.
type HarvestLoader interface {
	Parse(r io.Reader) (*models.HarvestSet, error)
	FromSheet(ctx context.Context, reader harvest.RowReader, sheetRange string) (*models.HarvestSet, error)
}

// WeatherFetcher runs the two weather queries of a pass.
type WeatherFetcher interface {
	Fetch(ctx context.Context, apiKey, city string) models.WeatherReport
}

// Pipeline recomputes the whole dashboard from its inputs on every call.
type Pipeline struct {
	harvest    HarvestLoader
	sheets     harvest.RowReader
	weather    WeatherFetcher
	calculator *efficiency.Calculator
	logger     *zap.Logger
}

// NewPipeline wires the dashboard pipeline. sheets may be nil when no Google
// Sheets source is configured.
func NewPipeline(loader HarvestLoader, sheets harvest.RowReader, weather WeatherFetcher, calculator *efficiency.Calculator, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		harvest:    loader,
		sheets:     sheets,
		weather:    weather,
		calculator: calculator,
		logger:     logger,
	}
}

// Render runs one full pass. It never fails: every external-input failure
// becomes a notice attached to its section.
func (p *Pipeline) Render(ctx context.Context, in models.DashboardInput) models.Dashboard {
	log := p.logger.With(zap.String("pass_id", uuid.NewString()))

	stages := in.Stages
	if len(stages) == 0 {
		log.Debug("no stages supplied, using defaults")
		stages = phenology.DefaultStageInputs(phenology.DefaultStageCount)
	}
	if len(stages) > phenology.MaxStages {
		stages = stages[:phenology.MaxStages]
	}

	curve := phenology.Build(stages)
	dash := models.Dashboard{
		Stages:  curve,
		Curve:   curve.Points(),
		Notices: []models.Notice{},
	}

	set, err := p.loadHarvest(ctx, in.Harvest)
	if err != nil {
		log.Warn("harvest sheet rejected", zap.Error(err))
		dash.Notices = append(dash.Notices, models.Notice{
			Section: models.SectionHarvest,
			Level:   models.NoticeError,
			Message: fmt.Sprintf("Erro ao ler a planilha: %v", err),
		})
		set = nil
	}
	if set != nil {
		dash.Harvest = models.HarvestView{Set: set, Timeline: set.Timeline()}
		dash.Notices = append(dash.Notices, harvestNotices(set)...)
	}

	report := p.fetchWeather(ctx, in.Weather)
	dash.Weather = models.WeatherView{
		Skipped:  report.Skipped,
		Current:  report.Current.Data,
		Forecast: report.Forecast.Data,
	}
	dash.Notices = append(dash.Notices, weatherNotices(report)...)

	dash.Efficiency = p.calculator.Compute(curve, set)
	switch dash.Efficiency.Reason {
	case models.ReasonNoHarvest:
		dash.Notices = append(dash.Notices, models.Notice{
			Section: models.SectionEfficiency,
			Level:   models.NoticeInfo,
			Message: msgUploadHarvest,
		})
	case models.ReasonNoBoxColumn:
		dash.Notices = append(dash.Notices, models.Notice{
			Section: models.SectionEfficiency,
			Level:   models.NoticeWarning,
			Message: fmt.Sprintf("A planilha não possui a coluna %q; relatório indisponível.", models.HarvestBoxesColumn),
		})
	}

	log.Info("dashboard rendered",
		zap.Int("stages", len(curve)),
		zap.Bool("harvest", set != nil),
		zap.Bool("weather_skipped", report.Skipped),
		zap.Bool("efficiency_available", dash.Efficiency.Available))

	return dash
}

func (p *Pipeline) loadHarvest(ctx context.Context, src models.HarvestSource) (*models.HarvestSet, error) {
	switch {
	case src.Upload != nil:
		return p.harvest.Parse(src.Upload)
	case src.SheetRange != "":
		return p.harvest.FromSheet(ctx, p.sheets, src.SheetRange)
	default:
		return nil, nil
	}
}

func (p *Pipeline) fetchWeather(ctx context.Context, q models.WeatherQuery) models.WeatherReport {
	if p.weather == nil {
		return models.WeatherReport{Skipped: true}
	}
	return p.weather.Fetch(ctx, q.APIKey, q.City)
}

func harvestNotices(set *models.HarvestSet) []models.Notice {
	var notices []models.Notice
	if set.MissingDates > 0 {
		notices = append(notices, models.Notice{
			Section: models.SectionHarvest,
			Level:   models.NoticeWarning,
			Message: fmt.Sprintf("%d linha(s) com data inválida foram mantidas sem data.", set.MissingDates),
		})
	}
	if set.InvalidBoxes > 0 {
		notices = append(notices, models.Notice{
			Section: models.SectionHarvest,
			Level:   models.NoticeWarning,
			Message: fmt.Sprintf("%d linha(s) com valor de caixas inválido foram ignoradas no total.", set.InvalidBoxes),
		})
	}
	return notices
}

func weatherNotices(report models.WeatherReport) []models.Notice {
	var notices []models.Notice
	if err := report.Current.Err; err != nil {
		notices = append(notices, weatherNotice(models.SectionWeather, models.NoticeError, "Erro API", err))
	}
	if err := report.Forecast.Err; err != nil {
		notices = append(notices, weatherNotice(models.SectionForecast, models.NoticeWarning, "Erro na previsão", err))
	}
	return notices
}

func weatherNotice(section string, apiLevel models.NoticeLevel, prefix string, err error) models.Notice {
	var apiErr *openweather.APIError
	var connErr *openweather.ConnectivityError

	switch {
	case errors.As(err, &apiErr):
		return models.Notice{Section: section, Level: apiLevel, Message: fmt.Sprintf("%s: %s", prefix, apiErr.Message)}
	case errors.As(err, &connErr):
		return models.Notice{Section: section, Level: models.NoticeError, Message: fmt.Sprintf("Erro de conexão: %v", connErr.Err)}
	default:
		return models.Notice{Section: section, Level: models.NoticeError, Message: fmt.Sprintf("%s: %v", prefix, err)}
	}
}
