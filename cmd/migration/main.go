package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"

	"github.com/riskibarqy/socli/internal/infrastructure/storage/postgres"
	"github.com/riskibarqy/socli/internal/platform/logging"
)

var errUsage = errors.New("usage")

// schemaMigrator is the part of *migrate.Migrate the commands use.
type schemaMigrator interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
}

func main() {
	logger := logging.NewJSON(logging.LevelInfo, os.Stderr)
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		logger.Error("DB_URL is required")
		os.Exit(1)
	}

	m, err := postgres.NewMigrator(dbURL)
	if err != nil {
		logger.Error("create migrator failed", "error", err)
		os.Exit(1)
	}

	runErr := run(os.Args[1:], m, os.Stdout, logger)
	closeMigrator(m, logger)
	switch {
	case errors.Is(runErr, errUsage):
		printUsage(os.Stderr)
		os.Exit(2)
	case runErr != nil:
		logger.Error("migration failed", "command", os.Args[1], "error", runErr)
		os.Exit(1)
	}
}

func run(args []string, m schemaMigrator, out io.Writer, logger *logging.Logger) error {
	if len(args) == 0 {
		return errUsage
	}

	switch cmd := strings.ToLower(strings.TrimSpace(args[0])); cmd {
	case "up":
		if err := ignoreNoChange(m.Up(), logger); err != nil {
			return errors.Wrap(err, "apply migrations")
		}
		logger.Info("collections schema is up to date")
	case "down":
		steps, err := parseSteps(args[1:])
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Steps(-steps), logger); err != nil {
			return errors.Wrapf(err, "roll back %d migration(s)", steps)
		}
		logger.Info("rolled back migrations", "steps", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			_, _ = fmt.Fprintln(out, "version: none")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read version")
		}
		_, _ = fmt.Fprintf(out, "version: %d\ndirty: %t\n", version, dirty)
	case "force":
		if len(args) < 2 {
			return errors.Wrap(errUsage, "force requires a version")
		}
		version, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || version < 0 {
			return errors.Newf("invalid version %q", args[1])
		}
		if err := m.Force(version); err != nil {
			return errors.Wrapf(err, "force version %d", version)
		}
		logger.Info("forced schema version", "version", version)
	default:
		return errors.Wrapf(errUsage, "unknown command %q", cmd)
	}
	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid down steps %q", args[0])
	}
	if steps <= 0 {
		return 0, errors.New("down steps must be > 0")
	}
	return steps, nil
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(m *migrate.Migrate, logger *logging.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source failed", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db failed", "error", dbErr)
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "usage: %s <up|down [steps]|version|force <version>>\n", filepath.Base(os.Args[0]))
}
