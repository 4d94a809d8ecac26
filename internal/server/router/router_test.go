package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/cropdash/internal/domain/models"
	"github.com/mamadbah2/cropdash/internal/server/handlers"
)

type staticRenderer struct{}

func (staticRenderer) Render(context.Context, models.DashboardInput) models.Dashboard {
	return models.Dashboard{}
}

func TestRoutes(t *testing.T) {
	engine := New(handlers.NewDashboardHandler(staticRenderer{}, "Londrina", 1<<20, nil), nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/dashboard/defaults", http.StatusOK},
		{http.MethodPost, "/dashboard", http.StatusOK},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}
}
