package rest

import "github.com/gin-gonic/gin"

// HttpMethod selects the gin registration call for a route. The app
// builder switches on it when mounting the route table.
type HttpMethod int

const (
	GET HttpMethod = iota
	POST
	PUT
	PATCH
)

// Route is one declarative entry in a service's route table: a handler
// bound to a method, a version group and a path under that group.
type Route struct {
	Method      HttpMethod
	Path        string
	HandlerFunc gin.HandlerFunc
	Group       string
}

func NewRoute(method HttpMethod, group, path string, handler gin.HandlerFunc) Route {
	return Route{
		Method:      method,
		Path:        path,
		Group:       group,
		HandlerFunc: handler,
	}
}
