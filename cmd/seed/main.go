// Development seed: populates a local database with a small fleet, a few
// bookings and pending settlement targets so the API has data to serve.
package main

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"velocar/internal/bookings"
	"velocar/internal/fleet"
	"velocar/internal/memberships"
	"velocar/internal/shared/config"
	"velocar/internal/shared/database"
	"velocar/internal/wallet"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	pg := db.GetPostgreSQL()

	vehicles := []fleet.Vehicle{
		{DisplayName: "Urus Performante", Plate: "VC-001-UP", PoolKey: "urus-performante", Category: "car"},
		{DisplayName: "Urus Performante", Plate: "VC-002-UP", PoolKey: "urus-performante", Category: "car"},
		{DisplayName: "SF90 Stradale", Plate: "VC-010-SF", PoolKey: "sf90-stradale", Category: "car"},
		{DisplayName: "Riva 88 Folgore", Plate: "VC-Y01-RF", PoolKey: "riva-88", Category: "yacht"},
	}
	for i := range vehicles {
		if err := pg.Create(&vehicles[i]).Error; err != nil {
			log.Fatalf("failed to seed vehicle %s: %v", vehicles[i].Plate, err)
		}
	}
	log.Printf("seeded %d vehicles", len(vehicles))

	userID := uuid.New()
	tomorrow := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	booking := bookings.Booking{
		UserID:         &userID,
		VehicleID:      vehicles[0].ID,
		PickupDate:     tomorrow,
		DropoffDate:    tomorrow.Add(48 * time.Hour),
		Status:         bookings.StatusConfirmed,
		PaymentStatus:  bookings.PaymentStatusSucceeded,
		GatewayOrderID: "SEED-BOOKED-1",
		AmountCents:    180000,
		CustomerEmail:  "seed-customer@example.com",
	}
	if err := pg.Create(&booking).Error; err != nil {
		log.Fatalf("failed to seed booking: %v", err)
	}

	draft := bookings.BookingDraft{
		OrderID:       "SEED-DRAFT-1",
		UserID:        &userID,
		VehicleID:     vehicles[2].ID,
		PickupDate:    tomorrow.Add(7 * 24 * time.Hour),
		DropoffDate:   tomorrow.Add(9 * 24 * time.Hour),
		AmountCents:   320000,
		CustomerEmail: "seed-customer@example.com",
	}
	if err := pg.Create(&draft).Error; err != nil {
		log.Fatalf("failed to seed booking draft: %v", err)
	}

	topUp := wallet.CreditTopUp{
		OrderID:       "SEED-TOPUP-1",
		UserID:        userID,
		AmountCents:   50000,
		PaymentStatus: wallet.PaymentStatusPending,
	}
	if err := pg.Create(&topUp).Error; err != nil {
		log.Fatalf("failed to seed credit top-up: %v", err)
	}

	purchase := memberships.MembershipPurchase{
		OrderID:       "SEED-MEMBER-1",
		UserID:        userID,
		TierID:        "black",
		BillingCycle:  memberships.BillingCycleYearly,
		AmountCents:   250000,
		PaymentStatus: memberships.PaymentStatusPending,
	}
	if err := pg.Create(&purchase).Error; err != nil {
		log.Fatalf("failed to seed membership purchase: %v", err)
	}

	log.Println("seed complete: fleet, booking, draft, top-up and membership purchase created")
}
