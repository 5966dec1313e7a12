package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tablesidear/api/internal/config"
	"github.com/tablesidear/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

const tableCount = 8

type seedCategory struct {
	name, nameAr string
	items        []seedItem
}

type seedItem struct {
	name, nameAr, price string
	prepTime            int
}

var catalog = []seedCategory{
	{"Starters", "مقبلات", []seedItem{
		{"Hummus", "حمص", "4.50", 5},
		{"Fattoush", "فتوش", "5.25", 7},
	}},
	{"Mains", "أطباق رئيسية", []seedItem{
		{"Burger", "برجر", "10.00", 15},
		{"Chicken Shawarma", "شاورما دجاج", "8.75", 12},
	}},
	{"Sides", "أطباق جانبية", []seedItem{
		{"Fries", "بطاطا مقلية", "3.50", 6},
	}},
	{"Drinks", "مشروبات", []seedItem{
		{"Fresh Lemonade", "ليموناضة", "2.95", 3},
	}},
}

func main() {
	// CLI flags
	email := flag.String("email", "", "Super admin email address")
	password := flag.String("password", "", "Super admin password")
	name := flag.String("name", "", "Super admin name")
	flag.Parse()

	// Fall back to environment variables
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}

	// Fall back to defaults
	if *email == "" {
		*email = "admin@tableside.local"
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}
	if *name == "" {
		*name = "Super Admin"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Seed in a transaction: everything or nothing
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	branchID, err := seedBranch(ctx, tx)
	if err != nil {
		log.Fatalf("Failed to seed branch: %v", err)
	}
	if err := seedTables(ctx, tx, branchID); err != nil {
		log.Fatalf("Failed to seed tables: %v", err)
	}
	if err := seedCatalog(ctx, tx); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	userID, err := seedAdmin(ctx, tx, *email, *password, *name)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Branch ID: %s", branchID)
	log.Printf("Admin ID: %s", userID)
}

// seedBranch creates the initial branch if it doesn't exist.
func seedBranch(ctx context.Context, tx pgx.Tx) (uuid.UUID, error) {
	const (
		branchName   = "Main Branch"
		branchNameAr = "الفرع الرئيسي"
	)

	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM branches WHERE name = $1 LIMIT 1`, branchName).Scan(&id)
	if err == nil {
		log.Printf("Branch '%s' already exists (ID: %s), skipping", branchName, id)
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check branch: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO branches (name, name_ar) VALUES ($1, $2) RETURNING id`,
		branchName, branchNameAr,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert branch: %w", err)
	}

	log.Printf("Created branch '%s' (ID: %s)", branchName, id)
	return id, nil
}

// seedTables creates T1..T8 for the branch, skipping numbers already taken.
func seedTables(ctx context.Context, tx pgx.Tx, branchID uuid.UUID) error {
	created := 0
	for i := 1; i <= tableCount; i++ {
		tag, err := tx.Exec(ctx,
			`INSERT INTO tables (branch_id, number, seats)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (branch_id, number) DO NOTHING`,
			branchID, fmt.Sprintf("T%d", i), 4,
		)
		if err != nil {
			return fmt.Errorf("insert table T%d: %w", i, err)
		}
		created += int(tag.RowsAffected())
	}
	log.Printf("Created %d tables", created)
	return nil
}

// seedCatalog creates the categories and their menu items by name.
func seedCatalog(ctx context.Context, tx pgx.Tx) error {
	for i, c := range catalog {
		var categoryID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM categories WHERE name = $1 LIMIT 1`, c.name).Scan(&categoryID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			err = tx.QueryRow(ctx,
				`INSERT INTO categories (name, name_ar, sort_order) VALUES ($1, $2, $3) RETURNING id`,
				c.name, c.nameAr, i+1,
			).Scan(&categoryID)
			if err != nil {
				return fmt.Errorf("insert category %s: %w", c.name, err)
			}
			log.Printf("Created category '%s'", c.name)
		case err != nil:
			return fmt.Errorf("check category %s: %w", c.name, err)
		}

		for _, it := range c.items {
			tag, err := tx.Exec(ctx,
				`INSERT INTO menu_items (category_id, name, name_ar, price, preparation_time)
				 SELECT $1, $2, $3, $4::numeric, $5
				 WHERE NOT EXISTS (SELECT 1 FROM menu_items WHERE name = $2)`,
				categoryID, it.name, it.nameAr, it.price, it.prepTime,
			)
			if err != nil {
				return fmt.Errorf("insert menu item %s: %w", it.name, err)
			}
			if tag.RowsAffected() > 0 {
				log.Printf("Created menu item '%s'", it.name)
			}
		}
	}
	return nil
}

// seedAdmin creates the super admin user if it doesn't exist.
func seedAdmin(ctx context.Context, tx pgx.Tx, email, password, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1 LIMIT 1`, email).Scan(&id)
	if err == nil {
		log.Printf("User '%s' already exists (ID: %s), skipping", email, id)
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, hashed_password, name, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		email, string(hashed), name, enum.UserRoleSuperAdmin,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}

	log.Printf("Created super admin '%s' (ID: %s)", email, id)
	return id, nil
}
