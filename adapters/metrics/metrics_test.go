package metrics_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/artpar/hyperapi/adapters/metrics"
	"github.com/artpar/hyperapi/core/writer"
)

var _ writer.Observer = (*metrics.Collector)(nil)

func TestNew(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	if m.RequestsTotal == nil || m.RequestDuration == nil || m.RequestsInFlight == nil {
		t.Error("request metrics not initialized")
	}
	if m.DocumentsWritten == nil || m.RelationsOmitted == nil || m.ResourcesEmbedded == nil {
		t.Error("writer metrics not initialized")
	}
	if m.ConfigReloads == nil {
		t.Error("ConfigReloads is nil")
	}
}

func TestObserveRequest(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	m.ObserveRequest("GET", "blog-postings/retrieve", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "blog-postings/retrieve", 204, time.Millisecond)
	m.ObserveRequest("POST", "blog-postings/create", 400, time.Millisecond)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "blog-postings/retrieve", "2xx")); got != 2 {
		t.Errorf("2xx requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "blog-postings/create", "4xx")); got != 1 {
		t.Errorf("4xx requests = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.RequestDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestObserver(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	m.DocumentWritten("single", time.Millisecond)
	m.DocumentWritten("single", time.Millisecond)
	m.DocumentWritten("page", time.Millisecond)
	m.RelationOmitted(writer.OmitFetchFailed)
	m.ResourceEmbedded("Person")

	if got := testutil.ToFloat64(m.DocumentsWritten.WithLabelValues("single")); got != 2 {
		t.Errorf("single documents = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RelationsOmitted.WithLabelValues("fetch_failed")); got != 1 {
		t.Errorf("omitted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ResourcesEmbedded.WithLabelValues("Person")); got != 1 {
		t.Errorf("embedded = %v, want 1", got)
	}
}

func TestConfigReloaded(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	m.ConfigReloaded(nil)
	m.ConfigReloaded(errors.New("bad yaml"))

	if got := testutil.ToFloat64(m.ConfigReloads); got != 1 {
		t.Errorf("reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ConfigReloadErrors); got != 1 {
		t.Errorf("reload errors = %v, want 1", got)
	}
	if testutil.ToFloat64(m.ConfigLastReload) == 0 {
		t.Error("last reload timestamp not set")
	}
}

func TestHandler(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	m.DocumentWritten("form", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `hyperapi_documents_written_total{kind="form"} 1`) {
		t.Errorf("body missing documents counter:\n%s", rec.Body.String())
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 201: "2xx", 404: "4xx", 405: "4xx", 500: "5xx", 0: "unknown", 700: "unknown"}
	for in, want := range tests {
		if got := metrics.StatusClass(in); got != want {
			t.Errorf("StatusClass(%d) = %q, want %q", in, got, want)
		}
	}
}
