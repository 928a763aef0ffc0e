// Command main runs the database seeder for The Creepiest Corners.
package main

import (
	"flag"
	"log"

	"creepycorners/internal/config"
	"creepycorners/internal/database"
	"creepycorners/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Follows per user")
	randSeed := flag.Int64("seed", 0, "Random seed (0 = time based)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	opts := defaults
	opts.NumUsers = *numUsers
	opts.NumPosts = *numPosts
	opts.FollowsPerUser = *follows
	opts.Seed = *randSeed
	s := seed.NewSeeder(db, opts)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	res, err := s.Run()
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Created %d users, %d posts, %d likes, %d comments, %d follows", res.Users, res.Posts, res.Likes, res.Comments, res.Follows)
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
