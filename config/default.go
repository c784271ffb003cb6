package config

import _ "embed"

// DefaultConfigYAML built-in defaults, overridden by config files and environment
//
//go:embed config.default.yaml
var DefaultConfigYAML []byte
