package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Options describes how to reach MySQL. Zero pool values fall back to the
// defaults used in production.
type Options struct {
	User     string
	Pass     string
	Host     string
	Port     string
	Name     string
	MaxOpen  int
	MaxIdle  int
	Lifetime time.Duration
}

// DSN renders the driver connection string. parseTime maps DATETIME to
// time.Time and loc=UTC keeps every timestamp in UTC. clientFoundRows makes
// RowsAffected count matched rows, so an UPDATE that rewrites identical
// values still reports the row as present.
func (o Options) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Pass
	cfg.Net = "tcp"
	cfg.Addr = o.Host + ":" + o.Port
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(o Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", o.DSN())
	if err != nil {
		return nil, err
	}

	// Pool settings
	if o.MaxOpen <= 0 {
		o.MaxOpen = 25
	}
	if o.MaxIdle <= 0 {
		o.MaxIdle = o.MaxOpen
	}
	if o.Lifetime <= 0 {
		o.Lifetime = 30 * time.Minute
	}
	db.SetMaxOpenConns(o.MaxOpen)
	db.SetMaxIdleConns(o.MaxIdle)
	db.SetConnMaxLifetime(o.Lifetime)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
