// Package config loads application settings from defaults, an optional
// config file, an optional .env file and GREENLEAF_* environment variables,
// then validates them.
package config
