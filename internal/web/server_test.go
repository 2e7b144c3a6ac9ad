package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
	"github.com/cosmicled/cosmicled/internal/led"
	"github.com/cosmicled/cosmicled/internal/playlist"
	"github.com/cosmicled/cosmicled/internal/render"
	"github.com/cosmicled/cosmicled/internal/render/scenes/solid"
)

const testScript = `
meta:
  author: test
coloring: hsv
layers:
  - axis: x
    freq: 1
    speed: 1
`

func newTestServer(t *testing.T) (*Server, *render.Registry, *config.Store) {
	t.Helper()
	lay := layout.Layout{Width: 10, Height: 10, Serpentine: true}
	palettes := color.DefaultTable()
	store, err := config.New(config.Default().Defaults, palettes)
	require.NoError(t, err)
	reg := render.NewRegistry(lay, palettes)
	require.NoError(t, reg.Register(solid.New("red", 255, 0, 0)))
	eng, err := render.NewEngine(store, reg, lay.Count(), led.NewSim())
	require.NoError(t, err)
	show := playlist.NewPlayer(reg.Activate)
	return New(store, reg, eng, palettes, lay, show), reg, store
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any, out any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := srv.Client().Post(srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestConfigRoundTrip(t *testing.T) {
	s, _, store := newTestServer(t)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	var snap config.Snapshot
	getJSON(t, srv, "/api/config", &snap)
	require.Equal(t, store.Snapshot().Version, snap.Version)

	var result struct {
		Applied  []string `json:"applied"`
		Rejected []string `json:"rejected"`
	}
	resp := postJSON(t, srv, "/api/config", map[string]any{
		"brightness": 0.7,
		"bogus_key":  1,
	}, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"brightness"}, result.Applied)
	require.Equal(t, []string{"bogus_key"}, result.Rejected)
	require.Equal(t, 0.7, store.Snapshot().Brightness)
}

func TestActivateProgram(t *testing.T) {
	s, reg, _ := newTestServer(t)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	resp := postJSON(t, srv, "/api/program", map[string]string{"name": "red"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "red", reg.ActiveName())

	resp = postJSON(t, srv, "/api/program", map[string]string{"name": "nope"}, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "red", reg.ActiveName())
}

func TestUploadScript(t *testing.T) {
	s, reg, _ := newTestServer(t)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	resp := postJSON(t, srv, "/api/upload", map[string]string{
		"name":   "waves",
		"source": testScript,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, reg.Activate("waves"))

	// Broken source is rejected without touching the active program.
	resp = postJSON(t, srv, "/api/upload", map[string]string{
		"name":   "bad",
		"source": "layers: []",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "waves", reg.ActiveName())
}

func TestStatusAndPalettes(t *testing.T) {
	s, _, _ := newTestServer(t)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	var status map[string]any
	getJSON(t, srv, "/api/status", &status)
	require.Equal(t, true, status["running"])
	require.Contains(t, status, "stats")
	require.Contains(t, status, "matrix")

	var pal struct {
		Palettes []string `json:"palettes"`
	}
	getJSON(t, srv, "/api/palettes", &pal)
	require.Contains(t, pal.Palettes, "rainbow")
}

func TestShowEndpoints(t *testing.T) {
	s, _, _ := newTestServer(t)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	resp := postJSON(t, srv, "/api/show", playlist.Show{
		Loop:    true,
		Entries: []playlist.Entry{{Program: "red", Seconds: 5}},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]any
	getJSON(t, srv, "/api/status", &status)
	show := status["show"].(map[string]any)
	require.Equal(t, "running", show["state"])

	resp = postJSON(t, srv, "/api/show/stop", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFramesWSSendsTopologyThenFrames(t *testing.T) {
	s, _, _ := newTestServer(t)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/frames"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var top map[string]any
	require.NoError(t, json.Unmarshal(msg, &top))
	require.Equal(t, float64(100), top["count"])

	s.BroadcastFrame(make([]byte, 300))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	var frame struct {
		RGB []byte `json:"rgb"`
	}
	require.NoError(t, json.Unmarshal(msg, &frame))
	require.Len(t, frame.RGB, 300)
}
