// Package ginmw adapts pkg/apierr to gin.
//
// Handlers report failures with Forward (or c.Error followed by c.Abort); the
// Errors middleware picks up the last error after the chain returns and writes
// the normalized JSON payload:
//
//	r := gin.New()
//	r.HandleMethodNotAllowed = true
//	r.Use(ginmw.Errors(), ginmw.DebugLogger(log))
//	r.NoRoute(ginmw.NotFound())
//	r.NoMethod(ginmw.MethodNotAllowed())
//
// gin runs the post-processing of middleware in reverse registration order, so
// DebugLogger must be registered after Errors to observe the error first.
//
// An override response can be attached to the request with SetOverride; it wins
// over the classification of the next error and is consumed by it.
package ginmw
