// Command main runs the database seeder for Threads.
package main

import (
	"flag"
	"log"
	"strings"

	"threads/internal/config"
	"threads/internal/database"
	"threads/internal/seed"
)

func main() {
	// Parse command line flags
	preset := flag.String("preset", "small", "Seeder preset to apply")
	presetsFile := flag.String("presets", "", "Optional YAML file with extra or overriding presets")
	numUsers := flag.Int("users", 0, "Override the preset's number of users")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed for a reproducible run (0 = time based)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	presets, err := seed.LoadPresets(*presetsFile)
	if err != nil {
		log.Fatalf("❌ Failed to load presets: %v", err)
	}
	opts, ok := presets[*preset]
	if !ok {
		log.Fatalf("❌ Unknown preset %q (available: %s)", *preset, strings.Join(seed.PresetNames(presets), ", "))
	}
	if *numUsers > 0 {
		opts.Users = *numUsers
	}
	if *randomSeed != 0 {
		opts.RandomSeed = *randomSeed
	}
	log.Printf("Preset %s: %d users, %d posts each, clean=%v\n", *preset, opts.Users, opts.PostsPerUser, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s := seed.NewSeeder(db, opts)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
