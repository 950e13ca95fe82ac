// Package config loads configuration for pipekit binaries.
//
// It uses Viper to read a YAML file (explicit, or found in standard
// locations such as ./<service>.yml and ./config/config.yml), loads an
// optional .env file with godotenv, and binds environment variables as key
// overrides. Values implementing encoding.TextUnmarshaler are decoded
// through mapstructure hooks, so enums such as process.PipeMode can be
// written as plain strings.
//
// # Usage
//
//	var cfg PipexConfig
//	err := config.LoadConfig("pipex", &cfg, config.WithConfigFile("pipex.yml"), config.WithEnvPrefix("PIPEX"))
package config
