package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Seeds an admin account and a small demo catalog. Credentials come from the
// environment only.
func main() {
	dsn := os.Getenv("PG_DSN")
	email := strings.ToLower(strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL")))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if dsn == "" || email == "" || len(password) < 8 {
		log.Fatal("PG_DSN, SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD (min 8 chars) must be set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	fmt.Println("→ Seeding admin user...")
	if err := seedAdmin(ctx, pool, email, password); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	fmt.Println("→ Seeding products...")
	if err := seedProducts(ctx, pool); err != nil {
		log.Fatalf("seed products: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO users (email, password_hash, role, is_active)
		VALUES ($1, $2, 'admin', TRUE)
		ON CONFLICT (LOWER(email)) DO NOTHING`, email, string(hash))
	return err
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) error {
	products := []struct {
		name, slug, sku     string
		mrp, dealer, retail string
	}{
		{"English Willow Cricket Bat", "english-willow-cricket-bat", "BAT-EW-01", "12500.00", "9800.00", "11250.00"},
		{"Leather Cricket Ball", "leather-cricket-ball", "BALL-LTH-01", "950.00", "620.00", "850.00"},
		{"Batting Pads (Pair)", "batting-pads-pair", "PAD-01", "3200.00", "2300.00", "2900.00"},
		{"Match Football Size 5", "match-football-size-5", "FB-5", "2100.00", "1500.00", "1890.00"},
	}
	var errs []error
	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (name, slug, sku, mrp, dealer_price, selling_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (sku) DO NOTHING`, p.name, p.slug, p.sku, p.mrp, p.dealer, p.retail)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.sku, err))
		}
	}
	return errors.Join(errs...)
}
