package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/blockverse/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 64, cfg.Player.StartInventory[block.GrassID])
	assert.Equal(t, 16, cfg.Player.StartInventory[block.LeavesID])
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("GAME_SEED", "")
	path := filepath.Join(t.TempDir(), "game.yaml")
	data := `
world:
  seed: 42
  chunk_radius: 1
terrain:
  noise: perlin
player:
  start_inventory:
    wood: 3
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, 1, cfg.World.ChunkRadius)
	assert.Equal(t, 64, cfg.World.Height, "не заданные поля сохраняют дефолт")
	assert.Equal(t, "perlin", cfg.Terrain.Noise)
	assert.Equal(t, map[block.ID]int{block.WoodID: 3}, cfg.Player.StartInventory)
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  seed: 1\n"), 0644))

	t.Setenv("GAME_CONFIG", path)
	t.Setenv("GAME_SEED", "99")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.World.Seed, "GAME_SEED имеет приоритет над файлом")

	t.Setenv("GAME_SEED", "abc")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := map[string]func(c *Config){
		"sea level":  func(c *Config) { c.World.SeaLevel = c.World.Height },
		"noise":      func(c *Config) { c.Terrain.Noise = "simplex" },
		"chance":     func(c *Config) { c.Terrain.TreeChance = 1.5 },
		"tick rate":  func(c *Config) { c.Physics.TickRate = 0 },
		"half width": func(c *Config) { c.Player.HalfWidth = 0.5 },
		"inventory":  func(c *Config) { c.Player.StartInventory[block.DirtID] = -1 },
		"low world":  func(c *Config) { c.World.Height = 8 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestHTTPPortFallback(t *testing.T) {
	s := ServerConfig{}
	t.Setenv("GAME_HTTP_PORT", "")
	assert.Equal(t, 8088, s.GetHTTPPort())

	t.Setenv("GAME_HTTP_PORT", "9000")
	assert.Equal(t, 9000, s.GetHTTPPort())

	s.HTTPPort = 7000
	assert.Equal(t, 7000, s.GetHTTPPort())
}
