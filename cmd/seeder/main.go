//cmd/seeder/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/unclebandit/acumbamail-sync/internal/config"
	"github.com/unclebandit/acumbamail-sync/internal/db"
)

func main() {
	cfg := config.Load()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatal(err)
	}

	email := os.Getenv("SEED_USER_EMAIL")
	if email == "" {
		email = "dev@example.com"
	}
	var token *string
	if t := os.Getenv("SEED_ACUMBAMAIL_TOKEN"); t != "" {
		token = &t
	}

	var id int
	err = conn.QueryRow(`
        INSERT INTO users (email, acumbamail_auth_token)
        VALUES ($1, $2)
        ON CONFLICT (email) DO UPDATE SET acumbamail_auth_token = COALESCE(EXCLUDED.acumbamail_auth_token, users.acumbamail_auth_token)
        RETURNING id
    `, email, token).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("Seeded user %s (id %d)\n", email, id)

	fmt.Println("Database seeding completed successfully!")
}
