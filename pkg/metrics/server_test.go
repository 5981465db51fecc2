package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vnykmshr/metricflow/internal/testutil"
)

func TestHandlerServesTextFormat(t *testing.T) {
	reg := NewRegistry(Config{Namespace: "test"})
	c, err := reg.Counter("events_total", "Total events")
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, c.Add(7.0))

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	testutil.AssertNoError(t, err)
	defer resp.Body.Close()

	testutil.AssertEqual(t, resp.StatusCode, http.StatusOK)

	body, err := io.ReadAll(resp.Body)
	testutil.AssertNoError(t, err)

	if !strings.Contains(string(body), "test_events_total 7") {
		t.Errorf("exposition output missing counter, got:\n%s", body)
	}
}

func TestStartServerRejectsInvalidPort(t *testing.T) {
	testutil.AssertError(t, StartServer(ServerConfig{Port: 0}))
	testutil.AssertError(t, StartServer(ServerConfig{Port: -1}))
	testutil.AssertError(t, StartServer(ServerConfig{Port: 70000}))
}

func TestStartServerLogsStartupLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	err := StartServer(ServerConfig{
		Port:     39137,
		Registry: NewRegistry(Config{Namespace: "test"}),
		Logger:   zap.New(core),
	})
	testutil.AssertNoError(t, err)

	entries := logs.FilterMessage("Starting metrics server at http://localhost:39137/").All()
	testutil.AssertEqual(t, len(entries), 1)
}
