package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/patient"
)

// Connect opens the configured database and sizes its connection pool.
// A nil logger silences gorm.
func Connect(cfg config.DatabaseConfig, log gormlogger.Interface) (*gorm.DB, error) {
	if log == nil {
		log = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	gormCfg := &gorm.Config{
		Logger: log,
		// Appointments reference patients and doctors weakly; deleting either
		// must not be blocked by the schema.
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		gormCfg.PrepareStmt = true
		dialector = postgres.New(postgres.Config{DSN: cfg.DSN()})
	case config.DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.Path))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite has a single writer; an in-memory database also exists only
		// for the lifetime of its one connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Migrate creates or updates every table. On Postgres it also installs the
// exclusion constraint that rejects overlapping appointments for a doctor.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations", zap.String("dialect", db.Name()))
	start := time.Now()

	models := []any{
		&patient.Patient{},
		&doctor.Doctor{},
		&appointment.Appointment{},
		&domain.ActivityEntry{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if db.Name() == "postgres" {
		if err := createConstraints(db); err != nil {
			return fmt.Errorf("creating constraints: %w", err)
		}
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

const overlapConstraint = "appointments_no_overlap"

func createConstraints(db *gorm.DB) error {
	statements := []struct {
		name  string
		query string
	}{
		{
			name:  "btree_gist",
			query: `CREATE EXTENSION IF NOT EXISTS btree_gist`,
		},
		{
			name: "clinic_minutes",
			query: `CREATE OR REPLACE FUNCTION clinic_minutes(hhmm text) RETURNS integer
				LANGUAGE sql IMMUTABLE STRICT
				AS $$ SELECT split_part(hhmm, ':', 1)::int * 60 + split_part(hhmm, ':', 2)::int $$`,
		},
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt.query).Error; err != nil {
			return fmt.Errorf("%s: %w", stmt.name, err)
		}
	}

	var existing int64
	if err := db.Raw(`SELECT count(*) FROM pg_constraint WHERE conname = ?`, overlapConstraint).Scan(&existing).Error; err != nil {
		return fmt.Errorf("looking up %s: %w", overlapConstraint, err)
	}
	if existing > 0 {
		return nil
	}

	query := `ALTER TABLE appointments ADD CONSTRAINT ` + overlapConstraint + ` EXCLUDE USING gist (
		doctor_id WITH =,
		appointment_date WITH =,
		int4range(clinic_minutes(start_time), clinic_minutes(end_time)) WITH &&
	) WHERE (start_time < end_time)`
	if err := db.Exec(query).Error; err != nil {
		return fmt.Errorf("%s: %w", overlapConstraint, err)
	}
	return nil
}
