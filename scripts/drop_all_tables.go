package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Read environment to determine table prefix
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev" // Default to dev
	}

	if env == "prod" {
		log.Fatal("Refusing to drop prod tables; use a migration instead")
	}

	prefix := env + "_"
	if override := os.Getenv("TABLE_PREFIX"); override != "" {
		prefix = override
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	// Drop all tables with environment-specific prefix, children first
	dropSQL := fmt.Sprintf(`
		DROP TABLE IF EXISTS %sattachments CASCADE;
		DROP TABLE IF EXISTS %sannotations CASCADE;
		DROP TABLE IF EXISTS %sgroups CASCADE;
		DROP TABLE IF EXISTS %ssubcategories CASCADE;
		DROP TABLE IF EXISTS %scategories CASCADE;
		DROP TABLE IF EXISTS %stasks CASCADE;
		DROP TABLE IF EXISTS %susers CASCADE;
	`, prefix, prefix, prefix, prefix, prefix, prefix, prefix)

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Printf("Dropped all %s* tables\n", prefix)
}
