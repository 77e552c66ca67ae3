// Command main runs the database seeder for Quayside.
package main

import (
	"flag"
	"log"

	"quayside/internal/config"
	"quayside/internal/database"
	"quayside/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numFezzes := flag.Int("fezzes", 40, "Number of fezzes to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d fezzes, clean=%v\n", *numUsers, *numFezzes, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(database.DB, seed.Options{
		NumUsers:    *numUsers,
		NumFezzes:   *numFezzes,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
