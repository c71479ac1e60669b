package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/arman-qz/parking-system/config"
	"github.com/arman-qz/parking-system/pkg/passhash"
	"github.com/arman-qz/parking-system/pkg/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	client, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err)
	}

	createSchema(client.Pool)
	seedDefaultAccounts(client.Pool)
}

func createSchema(db *pgxpool.Pool) {
	// short timeout for migration operations
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS drivers (
			email         TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			balance       BIGINT NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS parking_owners (
			email          TEXT PRIMARY KEY,
			password_hash  TEXT NOT NULL,
			lat            DOUBLE PRECISION,
			lon            DOUBLE PRECISION,
			payment_policy BIGINT,
			balance        BIGINT NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id          UUID PRIMARY KEY,
			driver_email        TEXT NOT NULL REFERENCES drivers (email),
			parking_owner_email TEXT NOT NULL REFERENCES parking_owners (email),
			start_time          TIMESTAMPTZ NOT NULL,
			end_time            TIMESTAMPTZ,
			payment_status      TEXT NOT NULL DEFAULT 'unpaid'
		);`,
		// one open session per driver, enforced by the database
		`CREATE UNIQUE INDEX IF NOT EXISTS sessions_one_active_per_driver
			ON sessions (driver_email)
			WHERE end_time IS NULL;`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			log.Fatalf("createSchema: %v", err)
		}
	}

	log.Println("createSchema: schema is up to date")
}

func seedDefaultAccounts(db *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		log.Fatalf("seedDefaultAccounts: begin tx: %v", err)
	}
	// ensure rollback if commit doesn't happen
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	driverHash, err := passhash.HashPassword("password")
	if err != nil {
		log.Fatalf("seedDefaultAccounts: hash driver password: %v", err)
	}
	ownerHash, err := passhash.HashPassword("password")
	if err != nil {
		log.Fatalf("seedDefaultAccounts: hash owner password: %v", err)
	}

	const insertDriver = `
INSERT INTO drivers (email, password_hash, balance)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO NOTHING;
`
	// 500.00 in minor units, enough to pay off a few test sessions
	if _, err := tx.Exec(ctx, insertDriver, "beka@parking.kz", driverHash, 50000); err != nil {
		log.Fatalf("seedDefaultAccounts: insert driver: %v", err)
	}

	const insertOwner = `
INSERT INTO parking_owners (email, password_hash, lat, lon, payment_policy)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO NOTHING;
`
	// rate is 1.00 per minute in minor units
	if _, err := tx.Exec(ctx, insertOwner, "temu@parking.kz", ownerHash, 43.238949, 76.889709, 100); err != nil {
		log.Fatalf("seedDefaultAccounts: insert owner: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("seedDefaultAccounts: commit: %v", err)
	}

	log.Println("seedDefaultAccounts: inserted/ensured default driver and owner")
}
