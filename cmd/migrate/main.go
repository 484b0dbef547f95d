// Command migrate applies the embedded schema migrations and prints the
// resulting version.
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	m, err := database.NewMigrator(db, log)
	if err != nil {
		log.Fatal("init migrator", zap.Error(err))
	}
	if err := m.Up(ctx); err != nil {
		log.Fatal("apply migrations", zap.Error(err))
	}
	v, err := m.Version(ctx)
	if err != nil {
		log.Fatal("read schema version", zap.Error(err))
	}
	fmt.Printf("schema at version %d\n", v)
}
