package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler(t *testing.T) {
	StampsTotal.Inc()
	StampsSkippedTotal.WithLabelValues("out_of_bounds").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"geoatlas_stamps_total", `geoatlas_stamps_skipped_total{reason="out_of_bounds"}`} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in output", name)
		}
	}
}
