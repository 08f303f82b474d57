package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfd-gps-service/app/src/core"
	"dfd-gps-service/app/src/infra"
)

func newTestServer(opts Options) *Server {
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}
	service := core.NewCorrector(core.NewEngine(), nil)
	return NewServer(service, infra.NewLogger(io.Discard, "test"), opts)
}

func TestServerServesEmbeddedDemoPage(t *testing.T) {
	t.Log("Шаг 1: запрашиваем корневую страницу")
	srv := newTestServer(Options{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/dfd-correct")
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
}

func TestServerServesStaticDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>custom</p>"), 0o644))
	srv := newTestServer(Options{StaticDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "custom")
}

func TestServerUnknownAssetIsNotFound(t *testing.T) {
	srv := newTestServer(Options{})

	req := httptest.NewRequest(http.MethodGet, "/missing.js", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServerPropagatesRequestID(t *testing.T) {
	srv := newTestServer(Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, "req-42", rr.Header().Get(requestIDHeader))

	t.Log("без заголовка генерируется новый идентификатор")
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rr.Header().Get(requestIDHeader), 36)
}

func TestServerHandlesCORSPreflight(t *testing.T) {
	srv := newTestServer(Options{AllowedOrigins: []string{"https://demo.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/dfd-correct", nil)
	req.Header.Set("Origin", "https://demo.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, "https://demo.example", rr.Header().Get("Access-Control-Allow-Origin"))

	t.Log("чужой источник не получает заголовок разрешения")
	req.Header.Set("Origin", "https://other.example")
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerRecordsRouteMetrics(t *testing.T) {
	srv := newTestServer(Options{})
	counter := infra.RequestsTotal.WithLabelValues("http", "/dfd-correct", "400")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodPost, "/dfd-correct", strings.NewReader(`{"elev_deg": 120}`))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestServerEndToEndZenithCase(t *testing.T) {
	t.Log("Шаг 1: приёмник в начале координат, спутник в зените")
	srv := httptest.NewServer(newTestServer(Options{}))
	defer srv.Close()

	body := `{"temp_K":288.15,"pressure_Pa":101325,"rh_frac":0,"elev_deg":90,"receiver_ecef":[0,0,0],"satellite_ecef":[0,0,20000000]}`
	resp, err := http.Post(srv.URL+"/dfd-correct", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	require.NoError(t, jsonDecode(resp.Body, &out))

	t.Log("Шаг 2: задержка равна зенитной гидростатической")
	assert.InDelta(t, 1.0, out["mapping_factor"], 1e-12)
	assert.Equal(t, 0.0, out["zenith_wet_m"])
	assert.InDelta(t, out["zenith_hydrostatic_m"].(float64), out["refractivity_delay_m"], 1e-9)
	assert.InDelta(t, 20_000_000-out["range_bias_m"].(float64), out["corrected_range_m"], 1e-6)
	assert.Len(t, out["los_unit"], 3)
}

func TestServerRejectsOutOfRangeCoordinates(t *testing.T) {
	t.Log("Шаг 1: координаты конечны, но их разность переполняется")
	srv := httptest.NewServer(newTestServer(Options{}))
	defer srv.Close()

	body := `{"lat":0,"lon":0,"h_m":0,"temp_K":288.15,"pressure_Pa":101325,"rh_frac":0.5,"elev_deg":45,
		"range_m":1000,"receiver_ecef":[-1e308,0,0],"satellite_ecef":[1e308,0,0]}`
	resp, err := http.Post(srv.URL+"/dfd-correct", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	t.Log("Шаг 2: ожидаем 400 с указанием поля")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out errorResponse
	require.NoError(t, jsonDecode(resp.Body, &out))
	assert.Equal(t, "receiver_ecef", out.Field)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func jsonDecode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
