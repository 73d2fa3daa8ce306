// Package config provides world configuration management.
//
// The config package handles:
//   - Loading world configurations from JSON or YAML files
//   - Caching parsed configurations
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Files live in the configs directory as <name>.json, <name>.yaml or
// <name>.yml. Each file is decoded on top of engine.DefaultConfig, so it
// only needs to name what it changes:
//
//	name: calm
//	description: sparse grove, slow felling
//	tree_chance: 0.12
//	fall_rate: 1.5
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	worldConfig, err := manager.LoadConfig("calm")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default is classic when present, else the first valid file, else the
// built-in tuning.
package config
