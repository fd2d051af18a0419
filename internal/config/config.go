package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/annel0/blockverse/internal/world/block"
	"gopkg.in/yaml.v3"
)

// ErrInvalid возвращается Validate для значений вне допустимых диапазонов
var ErrInvalid = errors.New("invalid config")

// Config корневая структура конфигурации приложения
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Terrain TerrainConfig `yaml:"terrain"`
	Physics PhysicsConfig `yaml:"physics"`
	Player  PlayerConfig  `yaml:"player"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

type WorldConfig struct {
	Seed        int64 `yaml:"seed"`
	Height      int   `yaml:"height"`
	SeaLevel    int   `yaml:"sea_level"`
	ChunkRadius int   `yaml:"chunk_radius"`
	Prefetch    bool  `yaml:"prefetch"`
}

type TerrainConfig struct {
	Noise            string  `yaml:"noise"` // "value" или "perlin"
	Baseline         float64 `yaml:"baseline"`
	OreChance        float64 `yaml:"ore_chance"`
	TreeChance       float64 `yaml:"tree_chance"`
	TreeMinElevation int     `yaml:"tree_min_elevation"`
	TrunkHeight      int     `yaml:"trunk_height"`
	CanopyLayers     int     `yaml:"canopy_layers"`
}

type PhysicsConfig struct {
	TickRate           int     `yaml:"tick_rate"`
	MaxStepsPerAdvance int     `yaml:"max_steps_per_advance"`
	Gravity            float64 `yaml:"gravity"`
}

type PlayerConfig struct {
	HalfWidth         float64          `yaml:"half_width"`
	Height            float64          `yaml:"height"`
	Speed             float64          `yaml:"speed"`
	JumpVelocity      float64          `yaml:"jump_velocity"`
	FallPenalty       int              `yaml:"fall_penalty"`
	HungerDecayChance float64          `yaml:"hunger_decay_chance"`
	StarveChance      float64          `yaml:"starve_chance"`
	RecipesFile       string           `yaml:"recipes_file"`
	StartInventory    map[block.ID]int `yaml:"start_inventory"`
}

type StorageConfig struct {
	SpillDir string `yaml:"spill_dir"` // пусто: выгрузка неактивных колонок отключена
}

type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Seed:        1337,
			Height:      64,
			SeaLevel:    24,
			ChunkRadius: 2,
		},
		Terrain: TerrainConfig{
			Noise:            "value",
			Baseline:         27,
			OreChance:        0.12,
			TreeChance:       0.02,
			TreeMinElevation: 26,
			TrunkHeight:      5,
			CanopyLayers:     4,
		},
		Physics: PhysicsConfig{
			TickRate:           60,
			MaxStepsPerAdvance: 5,
			Gravity:            0.012,
		},
		Player: PlayerConfig{
			HalfWidth:         0.3,
			Height:            1.8,
			Speed:             0.08,
			JumpVelocity:      0.2,
			FallPenalty:       4,
			HungerDecayChance: 0.002,
			StarveChance:      0.001,
			StartInventory: map[block.ID]int{
				block.GrassID:  64,
				block.DirtID:   64,
				block.StoneID:  32,
				block.WoodID:   32,
				block.SandID:   32,
				block.WaterID:  32,
				block.LeavesID: 16,
			},
		},
		Logging: LoggingConfig{
			ConsoleLevel: "info",
			FileLevel:    "debug",
		},
	}
}

// GetHTTPPort возвращает HTTP порт с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "GAME_HTTP_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV GAME_CONFIG, иначе возвращает дефолты.
// Переменная GAME_SEED переопределяет seed мира.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("GAME_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
		}
		// yaml.v3 дописывает ключи в существующую карту, поэтому стартовый
		// инвентарь из файла заменяет дефолтный целиком
		defaultInventory := cfg.Player.StartInventory
		cfg.Player.StartInventory = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
		}
		if cfg.Player.StartInventory == nil {
			cfg.Player.StartInventory = defaultInventory
		}
	}

	if envSeed := os.Getenv("GAME_SEED"); envSeed != "" {
		seed, err := strconv.ParseInt(envSeed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("GAME_SEED=%q: %w", envSeed, ErrInvalid)
		}
		cfg.World.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет диапазоны значений
func (c *Config) Validate() error {
	invalid := func(field string, value interface{}) error {
		return fmt.Errorf("%s=%v: %w", field, value, ErrInvalid)
	}

	w, t, p, pl := c.World, c.Terrain, c.Physics, c.Player

	if t.TrunkHeight < 1 {
		return invalid("terrain.trunk_height", t.TrunkHeight)
	}
	if t.CanopyLayers < 1 {
		return invalid("terrain.canopy_layers", t.CanopyLayers)
	}
	// Дерево на максимальной высоте поверхности должно помещаться в мир
	if w.Height < t.TrunkHeight+t.CanopyLayers+4 {
		return invalid("world.height", w.Height)
	}
	if w.SeaLevel < 0 || w.SeaLevel >= w.Height {
		return invalid("world.sea_level", w.SeaLevel)
	}
	if w.ChunkRadius < 0 {
		return invalid("world.chunk_radius", w.ChunkRadius)
	}
	if t.Noise != "value" && t.Noise != "perlin" {
		return invalid("terrain.noise", t.Noise)
	}
	for name, v := range map[string]float64{
		"terrain.ore_chance":         t.OreChance,
		"terrain.tree_chance":        t.TreeChance,
		"player.hunger_decay_chance": pl.HungerDecayChance,
		"player.starve_chance":       pl.StarveChance,
	} {
		if v < 0 || v > 1 {
			return invalid(name, v)
		}
	}
	if p.TickRate <= 0 {
		return invalid("physics.tick_rate", p.TickRate)
	}
	if p.MaxStepsPerAdvance <= 0 {
		return invalid("physics.max_steps_per_advance", p.MaxStepsPerAdvance)
	}
	if p.Gravity < 0 {
		return invalid("physics.gravity", p.Gravity)
	}
	if pl.HalfWidth <= 0 || pl.HalfWidth >= 0.5 {
		return invalid("player.half_width", pl.HalfWidth)
	}
	if pl.Height <= 0 {
		return invalid("player.height", pl.Height)
	}
	if pl.FallPenalty < 0 {
		return invalid("player.fall_penalty", pl.FallPenalty)
	}
	for id, n := range pl.StartInventory {
		if n < 0 {
			return invalid("player.start_inventory."+id.String(), n)
		}
	}
	return nil
}
