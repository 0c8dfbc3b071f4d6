package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/adapters/http/handler"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/employee"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/shift"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/codex-shift-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/platform/logging"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/platform/metrics"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/platform/server"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool, pg.WithIsolation(cfg.Database.Isolation))
	collector := metrics.New()

	conceptRepo := postgres.NewConceptRepository(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	shiftRepo := postgres.NewShiftRepository(dbPool)

	conceptSvc := concept.NewCatalog(conceptRepo, logger)
	employeeSvc := employee.NewService(employeeRepo, shiftRepo, nil, txManager, logger)
	shiftSvc := shift.NewService(shiftRepo, employeeRepo, conceptRepo,
		shift.WithTransactionManager(txManager),
		shift.WithLogger(logger),
		shift.WithLimits(rulesToLimits(cfg.Rules)),
		shift.WithRecorder(collector),
	)

	router := handler.NewRouter(handler.Dependencies{
		Shifts:    shiftSvc,
		Concepts:  conceptSvc,
		Employees: employeeSvc,
		Metrics:   collector,
		Logger:    logger,
		Ready:     dbPool.Ping,
	})

	srv := server.New(cfg.Server, router, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func rulesToLimits(r config.RulesConfig) shift.Limits {
	return shift.Limits{
		WeeklyHours:         r.WeeklyHours,
		DailyHours:          r.DailyHours,
		MonthlyHours:        r.MonthlyHours,
		WeeklyDaysOff:       r.WeeklyDaysOff,
		MonthlyDaysOff:      r.MonthlyDaysOff,
		WeeklyExtraShifts:   r.WeeklyExtraShifts,
		WeeklyRegularShifts: r.WeeklyRegularShifts,
		DailyHeadcount:      r.DailyHeadcount,
	}
}
