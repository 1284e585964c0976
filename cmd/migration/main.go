// Command migration applies the league schema to the configured Postgres
// database. The versioned SQL lives in db/migrations and covers the season
// state, team, player, fixture, and transfer tables the API serves from.
package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		log.Fatal("DB_URL is required")
	}

	m, err := newMigrator(dbURL)
	if err != nil {
		log.Fatal(err)
	}
	defer closeMigrator(m)

	if err := run(m, strings.ToLower(strings.TrimSpace(os.Args[1])), os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func newMigrator(dbURL string) (*migrate.Migrate, error) {
	migrationsDir, err := locateMigrations()
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, normalizeDBURL(dbURL))
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	log.Printf("migration source %s", sourceURL)

	return m, nil
}

func run(m *migrate.Migrate, cmd string, args []string) error {
	switch cmd {
	case "up":
		if err := stepResult(m.Up()); err != nil {
			return err
		}
		log.Printf("migrations applied")
		return nil
	case "down":
		steps, err := parseSteps(args)
		if err != nil {
			return err
		}
		if err := stepResult(m.Steps(-steps)); err != nil {
			return err
		}
		log.Printf("rolled back %d migration(s)", steps)
		return nil
	case "version":
		return reportVersion(m)
	case "force":
		if len(args) < 1 {
			return fmt.Errorf("force requires a version argument")
		}
		version, err := parseVersion(args[0])
		if err != nil {
			return err
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		log.Printf("forced version to %d", version)
		return nil
	case "goto", "migrate":
		if len(args) < 1 {
			return fmt.Errorf("goto requires a target version argument")
		}
		target, err := parseTarget(args[0])
		if err != nil {
			return err
		}
		if err := stepResult(m.Migrate(target)); err != nil {
			return err
		}
		log.Printf("migrated to version %d", target)
		return nil
	default:
		printUsage()
		os.Exit(2)
		return nil
	}
}

// stepResult treats an already-current schema as success.
func stepResult(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Printf("no migration changes")
		return nil
	}
	return err
}

func reportVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("version: none")
		fmt.Println("dirty: false")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	fmt.Printf("version: %d\n", version)
	fmt.Printf("dirty: %t\n", dirty)

	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Printf("close migration source: %v", srcErr)
	}
	if dbErr != nil {
		log.Printf("close migration db: %v", dbErr)
	}
}

// locateMigrations walks the candidate paths in order. The env overrides come
// first so a container can mount the SQL anywhere; the two fixed paths match
// the repo layout and the release image.
func locateMigrations() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		strings.TrimSpace(os.Getenv("MIGRATIONS_PATH")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, MIGRATIONS_PATH, ./db/migrations, /app/db/migrations)")
}

// normalizeDBURL mirrors the API server's pgx tuning so migrations run over
// the same DSN shape the service connects with.
func normalizeDBURL(raw string) string {
	if !envBool("DB_DISABLE_PREPARED_BINARY_RESULT") {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if !query.Has("disable_prepared_binary_result") {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func envBool(key string) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func printUsage() {
	bin := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down|version|force|goto> [args]\n", bin)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s up\n", bin)
	fmt.Fprintf(os.Stderr, "  %s down 1\n", bin)
	fmt.Fprintf(os.Stderr, "  %s version\n", bin)
	fmt.Fprintf(os.Stderr, "  %s force 1\n", bin)
	fmt.Fprintf(os.Stderr, "  %s goto 1\n", bin)
}
