package server

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// Route is one registered engine route as shown in the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

var systemPaths = map[string]bool{
	"/ping":    true,
	"/health":  true,
	"/version": true,
}

var methodRank = map[string]int{
	"GET":    0,
	"POST":   1,
	"PUT":    2,
	"PATCH":  3,
	"DELETE": 4,
}

func rankOf(method string) int {
	if r, ok := methodRank[method]; ok {
		return r
	}
	return len(methodRank)
}

// Routes lists registered routes. Application routes come before the
// system routes, then by path and method.
func (s *Server) Routes() []Route {
	infos := s.engine.Routes()
	slices.SortFunc(infos, func(a, b gin.RouteInfo) int {
		if sa, sb := systemPaths[a.Path], systemPaths[b.Path]; sa != sb {
			if sa {
				return 1
			}
			return -1
		}
		return cmp.Or(
			strings.Compare(a.Path, b.Path),
			cmp.Compare(rankOf(a.Method), rankOf(b.Method)),
		)
	})

	out := make([]Route, len(infos))
	for i, ri := range infos {
		out[i] = Route{Method: ri.Method, Path: ri.Path, Handler: formatHandlerName(ri.Handler)}
	}
	return out
}

// formatHandlerName trims gin's reflected handler name:
// "github.com/org/app/api.(*Series).List-fm" is "Series.List" and a closure
// like "endpoint.Health.func1" is "health".
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	name = name[strings.LastIndexByte(name, '/')+1:]
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	if slices.ContainsFunc(parts, isClosure) {
		for _, p := range slices.Backward(parts) {
			if !isClosure(p) {
				return strings.ToLower(p)
			}
		}
	}
	if len(parts) > 1 && strings.ToLower(parts[0]) == parts[0] {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

func isClosure(part string) bool {
	return strings.HasPrefix(part, "func")
}
