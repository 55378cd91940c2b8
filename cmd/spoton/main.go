package main

import (
	"context"

	"github.com/spoton-app/spoton/cmd/spoton/commands"
	"github.com/spoton-app/spoton/logging/logger"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		logger.Fatalf(context.Background(), "%v", err)
	}
}
