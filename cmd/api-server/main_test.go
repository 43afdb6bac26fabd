package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-appointment-engine/internal/app"
	"github.com/hackgods/clinic-appointment-engine/internal/config"
)

func TestNewHandler_MemoryBackends(t *testing.T) {
	cfg := config.Default()
	backends, err := app.Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer backends.Close(zerolog.Nop())

	h := newHandler(cfg, backends, zerolog.Nop())

	for path, want := range map[string]string{
		"/health/live":                              `"status"`,
		"/doctors":                                  `"D001"`,
		"/patients/P001/health-records/vaccinations": `"V001"`,
		"/metrics":                                  "go_goroutines",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), want, path)
	}
}
