package utils

// ContextKey is the type for request-scoped values set by the middlewares,
// kept distinct from plain strings so unrelated packages cannot collide.
type ContextKey string
