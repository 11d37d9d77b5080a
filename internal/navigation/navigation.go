// Package navigation carries route changes out of the core. The core never
// renders anything; it only announces where the user should go next.
package navigation

import (
	"sync"

	"go.uber.org/zap"
)

const (
	RouteLogin          = "/login"
	RouteMyAppointments = "/my-appointments"
	RouteBook           = "/book"
)

// Navigator receives hard navigation requests.
type Navigator interface {
	Navigate(route string)
}

// Func adapts a function to a Navigator.
type Func func(route string)

func (f Func) Navigate(route string) { f(route) }

// Logging writes every navigation to the logger.
type Logging struct {
	Log *zap.Logger
}

func (n Logging) Navigate(route string) {
	n.Log.Info("navigate", zap.String("route", route))
}

// Recorder keeps the routes it was asked to visit.
type Recorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *Recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Routes returns the visited routes in order.
func (r *Recorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

// Last returns the most recent route or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}
