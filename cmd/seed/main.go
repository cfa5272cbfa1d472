// Command main seeds the database with demo data.
package main

import (
	"flag"
	"log"

	"incognitor/internal/config"
	"incognitor/internal/database"
	"incognitor/internal/seed"
)

func main() {
	users := flag.Int("users", 10, "number of users to create")
	posts := flag.Int("posts", 30, "number of posts to create")
	blogs := flag.Int("blogs", 10, "number of blogs to create")
	events := flag.Int("events", 10, "number of events to create")
	clean := flag.Bool("clean", false, "delete existing rows first")
	fixture := flag.String("fixture", "", "optional YAML fixture file with curated content")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *users,
		NumPosts:    *posts,
		NumBlogs:    *blogs,
		NumEvents:   *events,
		ShouldClean: *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if *fixture != "" {
		if err := seed.LoadFixture(db, *fixture); err != nil {
			log.Fatalf("Fixture load failed: %v", err)
		}
		log.Printf("Loaded fixture %s", *fixture)
	}
}
