package main

import (
	"equiptrack/pkg/config"
	"equiptrack/pkg/database/postgresql"
	"equiptrack/seeders"
)

func main() {
	cfg := config.New()
	db := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer db.Close()

	seeders.Seed(db)
}
