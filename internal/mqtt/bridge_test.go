package mqtt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
	"github.com/cosmicled/cosmicled/internal/led"
	"github.com/cosmicled/cosmicled/internal/render"
	"github.com/cosmicled/cosmicled/internal/render/scenes/solid"
)

func newTestBridge(t *testing.T) (*Bridge, *render.Registry, *config.Store) {
	t.Helper()
	lay := layout.Layout{Width: 10, Height: 10, Serpentine: true}
	palettes := color.DefaultTable()
	store, err := config.New(config.Default().Defaults, palettes)
	require.NoError(t, err)
	reg := render.NewRegistry(lay, palettes)
	require.NoError(t, reg.Register(solid.New("red", 255, 0, 0)))
	eng, err := render.NewEngine(store, reg, lay.Count(), led.NewSim())
	require.NoError(t, err)
	return NewBridge(config.Default().MQTT, store, reg, eng), reg, store
}

func TestConfigSetAppliesAndReports(t *testing.T) {
	b, _, store := newTestBridge(t)

	res := b.handleConfigSet([]byte(`{"brightness": 0.25, "junk": true}`))
	require.Equal(t, []string{"brightness"}, res.Applied)
	require.Equal(t, []string{"junk"}, res.Rejected)
	require.Empty(t, res.Error)
	require.Equal(t, 0.25, store.Snapshot().Brightness)

	res = b.handleConfigSet([]byte(`not json`))
	require.NotEmpty(t, res.Error)
}

func TestProgramSetAcceptsBothForms(t *testing.T) {
	b, reg, store := newTestBridge(t)

	require.NoError(t, b.handleProgramSet([]byte(`red`)))
	require.Equal(t, "red", reg.ActiveName())
	require.Equal(t, "red", store.Snapshot().ActiveProgram)

	require.NoError(t, b.handleProgramSet([]byte(`{"name":"red"}`)))
	require.Error(t, b.handleProgramSet([]byte(`{"name":"nope"}`)))
	require.Error(t, b.handleProgramSet([]byte(``)))
	// A failed activation leaves the running program in place.
	require.Equal(t, "red", reg.ActiveName())
}

func TestTopicPrefix(t *testing.T) {
	b, _, _ := newTestBridge(t)
	require.Equal(t, "cosmicled/stats", b.topic("stats"))

	cfg := config.Default().MQTT
	cfg.Prefix = ""
	b2 := NewBridge(cfg, nil, nil, nil)
	require.Equal(t, "cosmicled/config/set", b2.topic("config/set"))
}
