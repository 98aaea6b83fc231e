package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

// migrationLogger adapts ectologger to migrate.Logger.
type migrationLogger struct {
	ectologger.Logger
}

func (l migrationLogger) Verbose() bool {
	return false
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

type MigrationConfig struct {
	FolderPath   string
	Version      uint
	Force        int
	AutoRollback bool // force the schema back to the previous version when a migration leaves it dirty
}

type Migrator struct {
	config MigrationConfig
	logger ectologger.Logger
}

func NewMigrator(logger ectologger.Logger, config MigrationConfig) *Migrator {
	return &Migrator{
		config: config,
		logger: logger,
	}
}

// Folder resolves the migration folder, falling back to a path relative to
// the working directory.
func (m *Migrator) Folder() string {
	folder := m.config.FolderPath
	if filepath.IsAbs(folder) {
		return folder
	}
	if _, err := os.Stat(folder); err == nil {
		abs, absErr := filepath.Abs(folder)
		if absErr == nil {
			return abs
		}
		return folder
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, folder)
}

// Migrate applies the migrations in the configured folder to db.
func (m *Migrator) Migrate(db *sql.DB, databaseName string) error {
	folder := m.Folder()
	if _, err := os.Stat(folder); err != nil {
		return errors.Wrapf(err, "migration folder %s does not exist", folder)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: databaseName})
	if err != nil {
		return errors.Wrap(err, "failed to create postgres migration driver")
	}

	mg, err := migrate.NewWithDatabaseInstance("file://"+folder, databaseName, driver)
	if err != nil {
		return errors.Wrap(err, "failed to create migrate instance")
	}
	mg.Log = migrationLogger{Logger: m.logger}

	return m.run(mg)
}

func (m *Migrator) run(mg *migrate.Migrate) error {
	if m.config.Force != 0 {
		if err := mg.Force(m.config.Force); err != nil {
			return errors.Wrapf(err, "failed to force database to version %d", m.config.Force)
		}
	}

	previous, _, err := mg.Version()
	if err != nil && err != migrate.ErrNilVersion {
		m.logger.WithError(err).Warn("Failed to read current migration version")
	}

	start := time.Now()
	if m.config.Version != 0 {
		err = mg.Migrate(m.config.Version)
	} else {
		err = mg.Up()
	}
	m.logger.WithField("elapsed", time.Since(start).String()).Info("Database migrations finished")

	return m.handleError(mg, err, previous)
}

func (m *Migrator) handleError(mg *migrate.Migrate, err error, previous uint) error {
	switch {
	case err == nil:
		m.logger.Info("Successfully applied migrations")
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("No new migrations to apply")
		return nil
	}

	version, dirty, versionErr := mg.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		return errors.Wrap(err, "migration failed and version is unreadable")
	}

	if dirty && m.config.AutoRollback {
		target := int(previous)
		if target == 0 && version > 0 {
			target = int(version) - 1
		}
		m.logger.WithError(err).Warnf("Database is dirty at version %d. Reverting to version %d", version, target)
		if forceErr := mg.Force(target); forceErr != nil {
			return errors.Wrapf(forceErr, "failed to force database to version %d", target)
		}
	}

	// The original error is returned even after a rollback so startup fails.
	return errors.Wrapf(err, "failed to apply migrations (version=%d dirty=%t)", version, dirty)
}

var migrationFileRe = regexp.MustCompile(`^(\d+)_.*\.up\.sql$`)

// LatestVersion returns the highest up-migration version in folder.
func LatestVersion(folder string) (int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, err
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationFileRe.FindStringSubmatch(entry.Name())
		if len(matches) < 2 {
			continue
		}
		v, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, err
		}
		versions = append(versions, v)
	}

	if len(versions) == 0 {
		return 0, fmt.Errorf("no migration files found in %s", folder)
	}
	sort.Ints(versions)
	return versions[len(versions)-1], nil
}
