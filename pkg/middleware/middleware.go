package middleware

import "net/http"

// Func wraps an http.Handler with additional behavior.
type Func func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware.
type System interface {
	Use(mw Func)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	funcs []Func
}

// New creates a middleware System seeded with the given functions.
func New(funcs ...Func) System {
	return &stack{funcs: funcs}
}

func (s *stack) Use(fn Func) {
	s.funcs = append(s.funcs, fn)
}

// Apply wraps handler so the first registered middleware runs outermost.
func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.funcs) - 1; i >= 0; i-- {
		handler = s.funcs[i](handler)
	}
	return handler
}
