package bootstrap

import (
	"fmt"
	"io"
	"time"

	"github.com/kbukum/apphost/component"
	"github.com/kbukum/apphost/di"
	"github.com/kbukum/apphost/host"
	"github.com/kbukum/apphost/server"
)

// Summary describes a composed host before it starts serving.
type Summary struct {
	serviceName     string
	version         string
	mode            string
	composeDuration time.Duration
	steps           []string
	bindings        []server.Binding
	components      []component.Description
	routes          []server.Route
}

// NewSummary creates a summary for a service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetComposeDuration records how long composition took.
func (s *Summary) SetComposeDuration(d time.Duration) {
	s.composeDuration = d
}

// Collect reads the runtime and what it registered in the container.
func (s *Summary) Collect(rt host.Runtime, c di.Container) {
	s.mode = rt.Mode().String()
	s.steps = rt.Steps()
	s.bindings = rt.Bindings()
	if reg, ok := di.TryResolve[*component.Registry](c, di.Keys.Components); ok {
		s.components = reg.Describe()
	}
	if srv, ok := di.TryResolve[*server.Server](c, di.Keys.HTTPServer); ok {
		s.routes = srv.Routes()
	}
}

// Display writes the summary to w.
func (s *Summary) Display(w io.Writer) {
	fmt.Fprintf(w, "\n🚀 %s v%s composed in %.2fs (%s)\n", s.serviceName, s.version, s.composeDuration.Seconds(), s.mode)

	if len(s.bindings) > 0 {
		fmt.Fprintf(w, "\n🔌 Bindings\n")
		for i, b := range s.bindings {
			fmt.Fprintf(w, "   %s %s\n", branch(i, len(s.bindings)), b.URL())
		}
	}

	if len(s.steps) > 0 {
		fmt.Fprintf(w, "\n🧱 Composition\n")
		for i, step := range s.steps {
			fmt.Fprintf(w, "   %s %d. %s\n", branch(i, len(s.steps)), i+1, step)
		}
	}

	if len(s.components) > 0 {
		fmt.Fprintf(w, "\n📦 Components\n")
		for i, d := range s.components {
			fmt.Fprintf(w, "   %s %s %s [%s]: %s\n", branch(i, len(s.components)), typeIcon(d.Type), d.Name, d.Type, d.Details)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", branch(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
	}

	fmt.Fprintf(w, "\n")
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func typeIcon(t string) string {
	switch t {
	case "database":
		return "🗄️"
	case "listener":
		return "🌐"
	default:
		return "📦"
	}
}
