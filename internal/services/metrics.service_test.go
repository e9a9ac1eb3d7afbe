package services

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"riego/internal/types"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsService(t *testing.T) {
	metrics := NewMetricsService()

	metrics.RecordSimulation(false)
	metrics.RecordSimulation(true)
	metrics.RecordSimulation(true)
	metrics.RecordValidationFailure("zona")
	metrics.RecordReading()
	metrics.RecordSchedulesCompleted(3)
	metrics.ObserveRequest("GET", "/api/zonas", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.simulations.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.simulations.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.validationFailures.WithLabelValues("zona")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.readings))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.schedulesCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/api/zonas", "200")))

	recorder := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "riego_simulations_total")
	assert.Contains(t, string(body), "riego_http_request_duration_seconds")
}

func TestMetricsService_TrackValidation(t *testing.T) {
	metrics := NewMetricsService()

	verr := types.FieldError("nombre", "Este campo es obligatorio.")
	assert.Same(t, verr, metrics.TrackValidation("zona", verr))
	assert.Error(t, metrics.TrackValidation("zona", errors.New("database down")))
	assert.NoError(t, metrics.TrackValidation("zona", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.validationFailures.WithLabelValues("zona")))

	var disabled *MetricsService
	assert.Same(t, verr, disabled.TrackValidation("zona", verr))
}
