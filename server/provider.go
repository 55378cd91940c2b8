package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
)

// ProviderSet is the server providers.
var ProviderSet = wire.NewSet(New, wire.Bind(new(http.Handler), new(*gin.Engine)))
