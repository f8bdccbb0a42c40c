package main

import (
	"io/ioutil"

	"github.com/naoina/toml"
)

// benchConfig is the workload description loaded from a TOML file and
// overridable by CLI flags. It drives both the `run` and `repl`
// subcommands of cmd/wormhole-bench.
type benchConfig struct {
	Capacity int    `toml:"capacity"`
	Debug    bool   `toml:"debug"`
	Domain   string `toml:"domain"` // "text", "int32" or "int64"; loaded but not consulted: run and repl always use an Int64Index
	Count    int    `toml:"count"`
	Seed     int64  `toml:"seed"`
}

func defaultConfig() benchConfig {
	return benchConfig{
		Capacity: 128,
		Debug:    false,
		Domain:   "int64",
		Count:    50000,
		Seed:     1,
	}
}

func loadConfig(path string) (benchConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
