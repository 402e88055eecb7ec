// Command main runs the database seeder for Dashkeeper.
package main

import (
	"context"
	"flag"
	"log"

	"dashkeeper/internal/config"
	"dashkeeper/internal/database"
	"dashkeeper/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	panes := flag.Int("panes", 3, "Panes per user")
	dashlets := flag.Int("dashlets", 4, "Dashlets per pane")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d panes x %d dashlets, clean=%v\n", *numUsers, *panes, *dashlets, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("❌ Schema apply failed: %v", err)
	}

	summary, err := seed.Seed(ctx, db, seed.Options{
		NumUsers:        *numUsers,
		PanesPerUser:    *panes,
		DashletsPerPane: *dashlets,
		ShouldClean:     *shouldClean,
		Seed:            *seedValue,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d users, %d panes, %d dashlets, %d shared.", summary.Users, summary.Panes, summary.Dashlets, summary.Shared)
}
