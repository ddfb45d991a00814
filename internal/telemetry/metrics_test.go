package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartMetricsServer(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "benchplot_records_total 3")
	})

	srv, err := StartMetricsServer("127.0.0.1:0", handler)
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "benchplot_records_total 3")

	other, err := http.Get("http://" + srv.Addr() + "/other")
	require.NoError(t, err)
	other.Body.Close()
	assert.Equal(t, http.StatusNotFound, other.StatusCode)
}

func TestStartMetricsServer_AddressInUse(t *testing.T) {
	srv, err := StartMetricsServer("127.0.0.1:0", http.NotFoundHandler())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	_, err = StartMetricsServer(srv.Addr(), http.NotFoundHandler())
	assert.Error(t, err)
}

func TestMetricsServer_Shutdown(t *testing.T) {
	srv, err := StartMetricsServer("127.0.0.1:0", http.NotFoundHandler())
	require.NoError(t, err)
	require.NoError(t, srv.Shutdown(context.Background()))

	_, err = http.Get("http://" + srv.Addr() + "/metrics")
	assert.Error(t, err)
}
