// Package health aggregates liveness checks for the service's external
// dependencies.
package health

import "context"

// Pinger reports whether one dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is a named dependency probe.
type Check struct {
	Name   string
	Pinger Pinger
}

// Status is the aggregate health report.
type Status struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks"`
}

// Service runs all registered checks on demand.
type Service struct {
	checks []Check
}

// New creates a health service over the given checks.
func New(checks ...Check) *Service {
	return &Service{checks: checks}
}

// Check probes every dependency and reports per-check state. A single
// failing dependency marks the whole service unhealthy.
func (s *Service) Check(ctx context.Context) Status {
	status := Status{Healthy: true, Checks: make(map[string]string, len(s.checks))}
	for _, c := range s.checks {
		if err := c.Pinger.Ping(ctx); err != nil {
			status.Healthy = false
			status.Checks[c.Name] = err.Error()
			continue
		}
		status.Checks[c.Name] = "ok"
	}
	return status
}
