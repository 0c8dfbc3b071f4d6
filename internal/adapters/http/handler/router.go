package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/employee"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/shift"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/platform/metrics"
)

// Dependencies はルーターが利用するユースケースと基盤です。
type Dependencies struct {
	Shifts    shift.UseCase
	Concepts  concept.UseCase
	Employees employee.UseCase
	Metrics   *metrics.Collector
	Logger    *zap.Logger
	// Ready は /health で呼ばれる疎通確認です。nil の場合は常に正常を返します。
	Ready func(ctx context.Context) error
}

// NewRouter は API ルートを登録した gin.Engine を返します。
func NewRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	if deps.Metrics != nil {
		r.Use(observeDuration(deps.Metrics))
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(c.Request.Context()); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	shifts := NewShiftHandler(deps.Shifts, logger)
	r.POST("/jornada", shifts.CreateShift)
	r.GET("/jornada", shifts.ListShifts)

	concepts := NewConceptHandler(deps.Concepts, logger)
	r.GET("/concepto-laboral", concepts.FindConcepts)

	employees := NewEmployeeHandler(deps.Employees, logger)
	r.POST("/empleado", employees.CreateEmployee)
	r.GET("/empleado", employees.ListEmployees)
	r.GET("/empleado/:id", employees.GetEmployee)
	r.PUT("/empleado/:id", employees.UpdateEmployee)
	r.DELETE("/empleado/:id", employees.DeleteEmployee)

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func observeDuration(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
