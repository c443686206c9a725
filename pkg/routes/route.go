package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Get constructs a GET route.
func Get(pattern string, handler http.HandlerFunc) Route {
	return Route{Method: http.MethodGet, Pattern: pattern, Handler: handler}
}

// Post constructs a POST route.
func Post(pattern string, handler http.HandlerFunc) Route {
	return Route{Method: http.MethodPost, Pattern: pattern, Handler: handler}
}

// Delete constructs a DELETE route.
func Delete(pattern string, handler http.HandlerFunc) Route {
	return Route{Method: http.MethodDelete, Pattern: pattern, Handler: handler}
}
