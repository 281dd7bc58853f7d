package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/joho/godotenv"

	"fleetservice/internal/config"
	"fleetservice/internal/database"
	"fleetservice/internal/domain/fleet"
)

// Seeds a small demo fleet: a few car models with several physical vehicles
// each, so reservations can be exercised locally without the real inventory.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed: ", err)
	}

	repo := fleet.NewRepository(db)
	service := fleet.NewService(repo)
	ctx := context.Background()

	models := []fleet.CreateModelRequest{
		{Model: "Model 3", Manufacturer: "Tesla", Seats: 5, Transmission: "Automatic", Category: "Sedan", FuelType: "Electric"},
		{Model: "Civic", Manufacturer: "Honda", Seats: 5, Transmission: "Automatic", Category: "Sedan", FuelType: "Petrol"},
		{Model: "RAV4", Manufacturer: "Toyota", Seats: 5, Transmission: "Automatic", Category: "SUV", FuelType: "Hybrid"},
	}

	const ownerID = "00000000-0000-0000-0000-000000000001"

	for _, req := range models {
		m, err := service.CreateModel(ctx, req)
		if err != nil {
			log.Printf("skipping model %s %s: %v", req.Manufacturer, req.Model, err)
			continue
		}
		log.Printf("created model %s %s (%s)", m.Manufacturer, m.Model, m.PublicID)

		for i := 0; i < 3; i++ {
			v, err := service.AddVehicle(ctx, fleet.AddVehicleRequest{
				ModelPublicID: m.PublicID,
				OwnerID:       ownerID,
				LicensePlate:  fmt.Sprintf("S%s%d%c", m.Model[:1], 1000+rand.Intn(9000), 'A'+rune(i)),
				DailyPrice:    80 + float64(rand.Intn(120)),
				MileageKm:     rand.Intn(80000),
			})
			if err != nil {
				log.Printf("skipping vehicle: %v", err)
				continue
			}
			log.Printf("  added vehicle %s (%s, %d km)", v.LicensePlate, v.ID, v.MileageKm)
		}
	}

	log.Println("Seed complete")
}
