package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/platform/config"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/platform/logging"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
		steps         = flag.Int("steps", 0, "number of migrations to apply with the steps action (negative rolls back)")
	)
	flag.Parse()

	_ = godotenv.Load()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	m, err := newMigrator(*migrationsDir, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("create migrate instance", zap.Error(err))
	}
	defer m.Close()
	m.Log = migrateLogger{logger: logger.Named("migrate").Sugar()}

	if err := runMigration(m, action, *steps, logger); err != nil {
		logger.Fatal("migration failed", zap.String("action", action), zap.Error(err))
	}

	logger.Info("migration completed", zap.String("action", action))
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func newMigrator(dir, dsn string) (*migrate.Migrate, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	return migrate.New("file://"+filepath.ToSlash(absDir), dsn)
}

func runMigration(m *migrate.Migrate, action string, steps int, logger *zap.Logger) error {
	switch action {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		if steps == 0 {
			return fmt.Errorf("steps action requires a non-zero -steps value")
		}
		return ignoreNoChange(m.Steps(steps))
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				logger.Info("no migration applied")
				return nil
			}
			return err
		}
		logger.Info("current version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// migrateLogger は golang-migrate のログを zap へ流します。
type migrateLogger struct {
	logger *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return false
}
