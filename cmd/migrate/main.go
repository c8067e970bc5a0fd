// Comando migrate: aplica (up) o revierte (down) las migraciones SQL del
// directorio ./migrations contra la base configurada.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down 1
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/ksilverstone/b2b/pkg/config"
	"github.com/ksilverstone/b2b/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}

	db, err := sql.Open("postgres", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir conexión")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("ping DB")
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("driver de migración")
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		log.Fatal().Err(err).Msg("instancia de migración")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if n, perr := strconv.Atoi(os.Args[2]); perr == nil {
				steps = n
			}
		}
		err = m.Steps(-steps)
	default:
		log.Fatal().Str("cmd", cmd).Msg("comando desconocido (up|down)")
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
	log.Info().Str("cmd", cmd).Msg("migraciones aplicadas")
}
