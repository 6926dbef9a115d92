package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed fills an empty database with the mock login users and a small
// starter inventory. Idempotent: existing rows are left alone.
func Seed(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("seeding mock users and starter inventory...")

	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
	if err := seedInventory(ctx, db); err != nil {
		log.Fatalf("failed to seed inventory: %v", err)
	}

	log.Println("seeding done")
}
