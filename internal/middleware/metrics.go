package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quayside_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// FezOperations counts fez lifecycle operations by kind and outcome.
	FezOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quayside_fez_operations_total",
		Help: "Total number of fez lifecycle operations by kind and outcome",
	}, []string{"operation", "outcome"})

	// BarrelSaveConflicts counts optimistic-concurrency save rejections.
	BarrelSaveConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quayside_barrel_save_conflicts_total",
		Help: "Total number of barrel saves rejected due to a stale version",
	})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
