// Package ctxutil carries request-scoped values, currently the trace id, on a
// context.Context and bridges them to *gin.Context.
package ctxutil
