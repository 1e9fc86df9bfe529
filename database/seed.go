package database

import (
	"fmt"
	"log"
	"os"

	"github.com/edstack/institute-api/model"
	"github.com/edstack/institute-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedInstitutes(); err != nil {
		return fmt.Errorf("failed to seed institutes: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// SeedAdminUser creates the bootstrap admin account if it does not exist
func (s *Seeder) SeedAdminUser() error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@institute.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
	}

	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin user already exists, skipping")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         "admin",
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded admin user %s", email)
	return nil
}

// SeedInstitutes inserts a few sample institutes for development environments
func (s *Seeder) SeedInstitutes() error {
	var count int64
	if err := s.db.Model(&model.Institute{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Institutes already seeded, skipping")
		return nil
	}

	samples := []model.Institute{
		{
			Name:     "Alpha University",
			Code:     "ALU",
			Type:     model.InstituteTypeUniversity,
			Address:  "1 Main St, Springfield",
			Email:    "contact@alpha.edu",
			IsActive: true,
		},
		{
			Name:     "Beta College",
			Code:     "BTC",
			Type:     model.InstituteTypeCollege,
			Address:  "42 College Rd, Rivertown",
			Email:    "office@beta.edu",
			IsActive: true,
		},
		{
			Name:     "Gamma Training Center",
			Code:     "GTC",
			Type:     model.InstituteTypeTrainingCenter,
			Address:  "9 Industrial Ave, Lakeside",
			Email:    "hello@gamma.training",
			IsActive: true,
		},
	}

	for _, institute := range samples {
		if err := s.db.Create(&institute).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d institutes", len(samples))
	return nil
}
