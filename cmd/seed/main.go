package main

import (
	"log"

	"github.com/gapindang/rapor-api/config"
	"github.com/gapindang/rapor-api/database"
	"gorm.io/gorm"
)

// Seeds the database outside the server lifecycle. Set
// SEED_DEMO_DATA=true to also create a demo class with enrolled
// students.
func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatalf("failed to load env: %v", err)
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("failed to get GORM DB instance")
	}

	if err := database.NewSeeder(db).SeedAll(); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	log.Println("Seeding completed")
}
