package database

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

// migrationLogger adapts ectologger to migrate's Logger interface
type migrationLogger struct {
	ectologger.Logger
}

func (l migrationLogger) Verbose() bool {
	return true
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

// MigrationConfig controls how schema migrations are applied at startup
type MigrationConfig struct {
	// MigrationFolderPath holds the *.up.sql / *.down.sql pairs, absolute or
	// relative to the working directory
	MigrationFolderPath string
	// Version pins the target version. Zero means migrate to latest.
	Version uint
	// AutoRollback forces a dirty database back to its previous version
	// before surfacing the migration error
	AutoRollback bool
}

// MigrationService applies schema migrations against a live connection
type MigrationService struct {
	config *MigrationConfig
	logger ectologger.Logger
}

func NewMigrationService(logger ectologger.Logger, config *MigrationConfig) *MigrationService {
	return &MigrationService{
		config: config,
		logger: logger,
	}
}

func (ms *MigrationService) folder() string {
	path := ms.config.MigrationFolderPath
	if _, err := os.Stat(path); err == nil {
		return path
	}

	// fall back to resolving relative to the working directory
	wd, _ := os.Getwd()
	return filepath.Join(wd, path)
}

// Migrate brings the named database up to the configured version
func (ms *MigrationService) Migrate(databaseName string, driver database.Driver) error {
	folder := ms.folder()
	if _, err := os.Stat(folder); err != nil {
		return errors.Wrap(err, fmt.Sprintf("migration folder %s does not exist", folder))
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+folder, databaseName, driver)
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migrate instance")
		return err
	}
	m.Log = migrationLogger{Logger: ms.logger}

	previous, _, err := m.Version()
	if err != nil {
		previous = 0
	}

	start := time.Now()
	var runErr error
	if ms.config.Version != 0 {
		runErr = m.Migrate(ms.config.Version)
	} else {
		runErr = m.Up()
	}
	ms.logger.Infof("Database migrations completed in %v", time.Since(start))

	return ms.resolve(m, runErr, previous)
}

// resolve turns the raw migrate error into the startup outcome, recovering
// from the cases a deploy rollback leaves behind.
func (ms *MigrationService) resolve(m *migrate.Migrate, err error, previous uint) error {
	if err == nil {
		ms.logger.Info("Successfully applied migrations")
		return nil
	}
	if err == migrate.ErrNoChange {
		ms.logger.Info("No new migrations to apply")
		return nil
	}

	// the recorded version exceeds what the folder contains, which happens
	// when a deploy with new migrations is rolled back. Re-pin to the latest
	// version we actually have.
	if strings.Contains(err.Error(), "no migration found for version") {
		latest, latestErr := latestVersion(ms.folder())
		if latestErr != nil {
			ms.logger.WithError(latestErr).Error("Failed to get latest migration version")
			return err
		}
		ms.logger.Warnf("No migration found for version %d. Forcing database to version %d", previous, latest)
		if forceErr := m.Force(latest); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", latest)
			return forceErr
		}
		return nil
	}

	ms.logger.WithError(err).Error("Migration failed")

	version, dirty, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		ms.logger.WithError(versionErr).Error("Failed to get current migration version")
		return err
	}

	if dirty && ms.config.AutoRollback {
		if previous == 0 {
			previous = version - 1
		}
		ms.logger.Warnf("Database is dirty at version %d. Reverting to version %d", version, previous)
		if forceErr := m.Force(int(previous)); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", previous)
			return forceErr
		}
	}

	// the original error still aborts startup even after a clean revert
	return err
}

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.up\.sql$`)

func latestVersion(folder string) (int, error) {
	files, err := os.ReadDir(folder)
	if err != nil {
		return 0, err
	}

	var versions []int
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		matches := migrationFilePattern.FindStringSubmatch(file.Name())
		if len(matches) > 1 {
			version, err := strconv.Atoi(matches[1])
			if err != nil {
				return 0, err
			}
			versions = append(versions, version)
		}
	}

	if len(versions) == 0 {
		return 0, fmt.Errorf("no migration files found in %s", folder)
	}

	sort.Ints(versions)
	return versions[len(versions)-1], nil
}
