package logger

import (
	"github.com/google/wire"

	"github.com/spoton-app/spoton/config"
	"github.com/spoton-app/spoton/version"
)

// ProviderSet is the wire provider set for the logger package
var ProviderSet = wire.NewSet(ProvideLogger)

// ProvideLogger builds the service logger tagged with the build version
func ProvideLogger(cfg *config.Logger) (*Logger, func(), error) {
	l, cleanup, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	l.SetVersion(version.Version)
	return l, cleanup, nil
}
