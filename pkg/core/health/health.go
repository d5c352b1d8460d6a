// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     health
// Description: Health checks for the robolang services and their resources
// Author:      Mike Stoffels
// Created:     2025-02-14
// License:     MIT
// ============================================================================

package health

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	coregrpc "github.com/msto63/robolang/pkg/core/grpc"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
	StatusUnknown   Status = "unknown"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string
	Status    Status
	Message   string
	Duration  time.Duration
	Timestamp time.Time
	Details   map[string]interface{}
}

// Checker is an interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type namedChecker struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewChecker creates a named checker from a function
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return &namedChecker{name: name, fn: fn}
}

func (c *namedChecker) Name() string {
	return c.name
}

func (c *namedChecker) Check(ctx context.Context) CheckResult {
	return c.fn(ctx)
}

// Registry runs a set of checkers concurrently
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	service  string
	version  string
	startAt  time.Time
}

// NewRegistry creates a new health check registry
func NewRegistry(service, version string) *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		service:  service,
		version:  version,
		startAt:  time.Now(),
	}
}

// Register adds a checker, replacing one with the same name
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// RegisterFunc adds a check function to the registry
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context) CheckResult) {
	r.Register(NewChecker(name, fn))
}

// Unregister removes a checker from the registry
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
}

// Check runs all checks and aggregates them. Results are sorted by name.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	checkers := make([]Checker, 0, len(r.checkers))
	for _, c := range r.checkers {
		checkers = append(checkers, c)
	}
	r.mu.RUnlock()

	report := &Report{
		Service:   r.service,
		Version:   r.version,
		Uptime:    time.Since(r.startAt),
		Timestamp: time.Now(),
		Checks:    make([]CheckResult, len(checkers)),
	}

	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()
			if result.Name == "" {
				result.Name = c.Name()
			}
			if result.Status == "" {
				result.Status = StatusUnknown
			}
			report.Checks[i] = result
		}(i, checker)
	}
	wg.Wait()

	sort.Slice(report.Checks, func(i, j int) bool {
		return report.Checks[i].Name < report.Checks[j].Name
	})

	report.Status = StatusHealthy
	for _, result := range report.Checks {
		switch result.Status {
		case StatusUnhealthy:
			report.Status = StatusUnhealthy
		case StatusDegraded, StatusUnknown:
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

// CheckWithTimeout runs all health checks with a timeout
func (r *Registry) CheckWithTimeout(timeout time.Duration) *Report {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.Check(ctx)
}

// Report represents the overall health report
type Report struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Uptime    time.Duration `json:"uptime"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// Healthy reports whether every check passed
func (r *Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// String returns a string representation of the report
func (r *Report) String() string {
	return fmt.Sprintf("Service: %s, Status: %s, Checks: %d", r.Service, r.Status, len(r.Checks))
}

func failed(name string, err error, details map[string]interface{}) CheckResult {
	return CheckResult{Name: name, Status: StatusUnhealthy, Message: err.Error(), Details: details}
}

// TCPCheck reports whether address accepts TCP connections
func TCPCheck(name, address string, timeout time.Duration) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		details := map[string]interface{}{"address": address}

		dialer := &net.Dialer{Timeout: timeout}
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return failed(name, err, details)
		}
		conn.Close()

		return CheckResult{Name: name, Status: StatusHealthy, Message: "accepting connections", Details: details}
	})
}

// GRPCCheck queries the standard gRPC health service at address for service
func GRPCCheck(name, address, service string, timeout time.Duration) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		details := map[string]interface{}{"address": address, "service": service}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		conn, err := coregrpc.DialSimple(address)
		if err != nil {
			return failed(name, err, details)
		}
		defer conn.Close()

		if err := coregrpc.CheckHealth(ctx, conn, service); err != nil {
			return failed(name, err, details)
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: "serving", Details: details}
	})
}

// Pinger is implemented by resources that can verify their own connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck reports the result of p.Ping
func PingCheck(name string, p Pinger) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		if err := p.Ping(ctx); err != nil {
			return failed(name, err, nil)
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: "reachable"}
	})
}
