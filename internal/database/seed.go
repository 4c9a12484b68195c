package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedServices are the offerings shown on a fresh install.
var seedServices = []struct {
	title       string
	description string
}{
	{"Impression Laser", "Documents, flyers, cartes de visite et plus avec une qualité d'impression supérieure."},
	{"Personnalisation d'Objets", "Mugs, t-shirts, casquettes et articles promotionnels à votre image."},
	{"Impression de Bâches", "Bâches grand format pour événements, publicité extérieure et signalétique."},
	{"Roll-Up", "Supports roll-up professionnels pour salons, expositions et présentations."},
	{"Sérigraphie", "Impression sérigraphique sur textile et supports variés, haute durabilité."},
}

// seedCategories are the gallery categories created on a fresh install.
var seedCategories = []string{"Laser", "Objets personnalisés", "Bâches", "Roll-Up", "Sérigraphie"}

// Seed populates the database with initial development data: a default
// admin user holding the admin role, the stock services, and gallery
// categories. Each step is skipped when its table already has rows.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedCatalog(db); err != nil {
		return err
	}
	return nil
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRow(`
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, "admin@gadgetsite.local", string(hash), "Admin").Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO user_roles (user_id, role) VALUES ($1, 'admin')`, userID); err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@gadgetsite.local",
		"password", "admin",
	)
	return nil
}

func seedCatalog(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM services").Scan(&count); err != nil {
		return fmt.Errorf("seed check services: %w", err)
	}
	if count == 0 {
		for i, s := range seedServices {
			if _, err := db.Exec(`
				INSERT INTO services (title, description, sort_order)
				VALUES ($1, $2, $3)
			`, s.title, s.description, i); err != nil {
				return fmt.Errorf("seed service %q: %w", s.title, err)
			}
		}
		slog.Info("seeded services", "count", len(seedServices))
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count == 0 {
		for i, name := range seedCategories {
			if _, err := db.Exec(`
				INSERT INTO categories (name, sort_order) VALUES ($1, $2)
			`, name, i); err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}
		slog.Info("seeded categories", "count", len(seedCategories))
	}
	return nil
}
