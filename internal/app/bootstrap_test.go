package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosmicled/cosmicled/internal/config"
)

func TestInitCoreRegistersBuiltins(t *testing.T) {
	core, err := InitCore(config.Default(), true)
	require.NoError(t, err)
	defer core.Stop()

	names := map[string]bool{}
	for _, info := range core.Registry.List() {
		names[info.Name] = true
	}
	for _, want := range []string{"cosmic", "aurora", "plasma", "calib", "white"} {
		require.True(t, names[want], "missing builtin %q", want)
	}
	// config.Default names cosmic as the startup program.
	require.Equal(t, "cosmic", core.Registry.ActiveName())
}

func TestInitCoreRejectsBadMatrix(t *testing.T) {
	cfg := config.Default()
	cfg.Matrix.Width = 0
	_, err := InitCore(cfg, true)
	require.Error(t, err)
}

func TestInitCoreUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = "teleport"
	_, err := InitCore(cfg, false)
	require.Error(t, err)
}

func TestInitCoreStepsWithShow(t *testing.T) {
	core, err := InitCore(config.Default(), true)
	require.NoError(t, err)
	defer core.Stop()

	require.NoError(t, core.Show.Load(DefaultShow()))
	core.Show.Start()
	for i := 0; i < 5; i++ {
		core.Engine.Step()
	}
	require.Equal(t, uint64(5), core.Engine.Stats().FrameCount)
}
