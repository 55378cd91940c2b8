package config

import "github.com/google/wire"

// ProviderSet is the wire provider set for the config package
var ProviderSet = wire.NewSet(ProvideConfig, wire.FieldsOf(new(*Config), "Logger", "Database"))

// ProvideConfig loads the settings from src
func ProvideConfig(src Source) (*Config, error) {
	return LoadSource(src)
}
