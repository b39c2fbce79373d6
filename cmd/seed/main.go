// Command seed runs the database seeder for Quill.
package main

import (
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 4, "Posts per user")
	commentsPerPost := flag.Int("comments", 3, "Comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Path to a YAML preset overriding the other flags")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.DefaultOptions()
	if *preset != "" {
		opts, err = seed.LoadPreset(*preset)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		log.Printf("Applying preset %s", *preset)
	} else {
		opts.NumUsers = *numUsers
		opts.PostsPerUser = *postsPerUser
		opts.CommentsPerPost = *commentsPerPost
		opts.ShouldClean = *shouldClean
	}

	if err := seed.NewSeeder(db).Run(opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
