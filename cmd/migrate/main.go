// Command migrate manages the postgres schema of the bakery.
//
//	migrate up
//	migrate step -- -1
//	migrate create add_order_notes "notes on pickup orders"
//
// Database settings come from config.toml and BAKERY_DATABASE_* variables.
// Without --path the migrations embedded in the binary are used; create and
// list always work on a directory, ./migrations by default.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/logger"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

const defaultMigrationsDir = "migrations"

var (
	app      = kingpin.New("migrate", "Panificadora Nancy database migrations")
	path     = app.Flag("path", "Migrations directory; the embedded set is used when empty").String()
	logLevel = app.Flag("log-level", "Log level (debug, info, warn, error)").Default("info").String()

	upCmd   = app.Command("up", "Apply all pending migrations")
	downCmd = app.Command("down", "Roll back all migrations")

	stepCmd   = app.Command("step", "Apply n migrations, negative n rolls back")
	stepCount = stepCmd.Arg("n", "Number of migrations").Required().Int()

	gotoCmd     = app.Command("goto", "Migrate up or down to a version")
	gotoVersion = gotoCmd.Arg("version", "Target version").Required().Uint()

	versionCmd = app.Command("version", "Show the applied version")

	forceCmd     = app.Command("force", "Set the version after a failed run, without migrating")
	forceVersion = forceCmd.Arg("version", "Version to record").Required().Int()

	dropCmd     = app.Command("drop", "Drop every database object")
	dropConfirm = dropCmd.Flag("confirm", "Required; drop is irreversible").Bool()

	createCmd  = app.Command("create", "Write the next numbered up/down pair")
	createName = createCmd.Arg("name", "Short name, e.g. add_order_notes").Required().String()
	createDesc = createCmd.Arg("description", "Comment placed in both files").String()

	listCmd = app.Command("list", "List migrations in the directory")
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	switch cmd {
	case createCmd.FullCommand():
		mf, err := migration.CreateMigration(sourceDir(), *createName, *createDesc)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath))
		return
	case listCmd.FullCommand():
		names, err := migration.ListMigrations(sourceDir())
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(names) == 0 {
			log.Info("No migrations found")
		}
		for _, n := range names {
			fmt.Println("  -", n)
		}
		return
	case dropCmd.FullCommand():
		if !*dropConfirm {
			log.Fatal("Drop cancelled, pass --confirm to drop every table")
		}
	}

	m, closeDB := openMigrator(log)
	defer closeDB()

	switch cmd {
	case upCmd.FullCommand():
		err = m.Up()
	case downCmd.FullCommand():
		err = m.Down()
	case stepCmd.FullCommand():
		err = m.Steps(*stepCount)
	case gotoCmd.FullCommand():
		err = m.GoTo(*gotoVersion)
	case forceCmd.FullCommand():
		err = m.Force(*forceVersion)
	case dropCmd.FullCommand():
		err = m.Drop()
	case versionCmd.FullCommand():
		var (
			v     uint
			dirty bool
		)
		if v, dirty, err = m.Version(); err == nil {
			if v == 0 {
				log.Info("No migrations applied")
			} else {
				log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			}
		}
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", cmd), zap.Error(err))
	}
}

// openMigrator connects to postgres; the returned func closes both the
// migrator and the connection
func openMigrator(log *zap.Logger) (*migration.Migrator, func()) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatal("Migrations only run against postgres; the server creates sqlite schemas itself",
			zap.String("driver", cfg.Database.Driver))
	}

	dir := *path
	if dir != "" {
		if dir, err = filepath.Abs(dir); err != nil {
			log.Fatal("Failed to resolve migrations path", zap.Error(err))
		}
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to reach database", zap.Error(err))
	}
	m, err := migration.New(db, dir, log)
	if err != nil {
		_ = db.Close()
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	return m, func() {
		_ = m.Close()
		_ = db.Close()
	}
}

// sourceDir is the directory create and list work on
func sourceDir() string {
	if *path != "" {
		return *path
	}
	return defaultMigrationsDir
}
