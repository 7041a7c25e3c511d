package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/crimes/{crime_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/crimes/{crime_id}", http.MethodGet, "418"))

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/crimes/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("/crimes/{crime_id}", http.MethodGet, "418"))
	assert.Equal(t, before+2, after)
}

func TestHandlerExposesCollectors(t *testing.T) {
	CommentsAdded.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "crimewatch_comments_added_total"))
}
