package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/user-records/config"
	userapp "github.com/oksasatya/user-records/internal/application"
	"github.com/oksasatya/user-records/internal/infrastructure/store"
	"github.com/oksasatya/user-records/pkg/apperror"
	"github.com/oksasatya/user-records/pkg/helpers"
)

type seedUser struct {
	Name, Email, ImageURL string
}

var samples = []seedUser{
	{"Ada Lovelace", "ada@example.com", "https://picsum.photos/seed/ada/200"},
	{"Alan Turing", "alan@example.com", "https://picsum.photos/seed/alan/200"},
	{"Grace Hopper", "grace@example.com", "https://picsum.photos/seed/grace/200"},
	{"Linus Torvalds", "linus@example.com", "https://picsum.photos/seed/linus/200"},
	{"Margaret Hamilton", "margaret@example.com", "https://picsum.photos/seed/margaret/200"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	concurrency := flag.Int("concurrency", 4, "parallel inserts")
	flag.Parse()

	ctx := context.Background()
	repo, closeStore, err := store.OpenUserRepository(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open user store: %v", err)
	}
	defer closeStore()

	svc := userapp.NewService(repo, logger, nil, "", nil)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*concurrency)
	for _, s := range samples {
		g.Go(func() error {
			u, err := svc.Create(gctx, userapp.UserInput{Name: &s.Name, Email: &s.Email, ImageURL: &s.ImageURL})
			if apperror.KindOf(err) == apperror.KindConflict {
				fmt.Printf("skipped existing user: email=%s\n", s.Email)
				return nil
			}
			if err != nil {
				return fmt.Errorf("seed %s: %w", s.Email, err)
			}
			fmt.Printf("seeded user: id=%s email=%s name=%s\n", u.ID, u.Email, u.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
}
