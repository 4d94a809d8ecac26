package models

import "io"

// NoticeLevel mirrors the severity of a message shown next to a section.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Section names used to attach notices.
const (
	SectionStages     = "stages"
	SectionHarvest    = "harvest"
	SectionWeather    = "weather"
	SectionForecast   = "forecast"
	SectionEfficiency = "efficiency"
)

// Notice is a non-fatal, user-visible message.
type Notice struct {
	Section string      `json:"section"`
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// WeatherQuery carries the credential and city typed into the form.
type WeatherQuery struct {
	APIKey string
	City   string
}

// HarvestSource selects where harvest rows come from. At most one is used;
// Upload wins over SheetRange.
type HarvestSource struct {
	Upload     io.Reader
	SheetRange string
}

// DashboardInput is everything one render pass needs.
type DashboardInput struct {
	Stages  []StageInput
	Harvest HarvestSource
	Weather WeatherQuery
}

// HarvestView is the harvest section of the dashboard.
type HarvestView struct {
	Set      *HarvestSet     `json:"set,omitempty"`
	Timeline []TimelinePoint `json:"timeline,omitempty"`
}

// WeatherView is the weather section of the dashboard.
type WeatherView struct {
	Skipped  bool             `json:"skipped"`
	Current  *WeatherSnapshot `json:"current,omitempty"`
	Forecast ForecastSeries   `json:"forecast,omitempty"`
}

// Dashboard is the full output of one render pass.
type Dashboard struct {
	Stages     StageCurve       `json:"stages"`
	Curve      []CurvePoint     `json:"curve"`
	Harvest    HarvestView      `json:"harvest"`
	Weather    WeatherView      `json:"weather"`
	Efficiency EfficiencyReport `json:"efficiency"`
	Notices    []Notice         `json:"notices"`
}
