package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"velocar/internal/bookings"
	"velocar/internal/fleet"
	"velocar/internal/memberships"
	"velocar/internal/wallet"
)

// Migrate runs GORM auto-migrations for all domain models
func Migrate(db *gorm.DB) error {
	// uuid_generate_v4 used by primary key defaults
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	err := db.AutoMigrate(
		&fleet.Vehicle{},
		&fleet.Reservation{},
		&bookings.Booking{},
		&bookings.BookingDraft{},
		&wallet.Wallet{},
		&wallet.CreditTransaction{},
		&wallet.CreditTopUp{},
		&memberships.MembershipPurchase{},
		&memberships.MemberProfile{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Println("✅ Database migrations completed")
	return nil
}
