// Package main provides a tool to seed a workspace with sample icons.
//
// This opens (or creates) a directory-mode workspace and fills it with a
// handful of icons spread across the default categories, for exercising
// search, export, and the category tree during development.
//
// Usage:
//
//	go run ./cmd/seed --workspace ~/IconVault/demo
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/iconvault/iconvault/internal/logger"
	"github.com/iconvault/iconvault/internal/storage"
	"github.com/iconvault/iconvault/internal/store"
)

var workspace = flag.String("workspace", "", "Workspace directory to seed (default $HOME/IconVault/demo)")

type sample struct {
	icon store.NewIcon
	svg  string
}

var samples = []sample{
	{
		icon: store.NewIcon{
			Name:        "home",
			Description: "House outline",
			Categories:  []string{"cat-002"},
			Tags:        []string{"house", "building", "start"},
			Colors:      []string{"#000000"},
		},
		svg: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M3 12l9-9 9 9M5 10v10h14V10" fill="none" stroke="#000000"/></svg>`,
	},
	{
		icon: store.NewIcon{
			Name:        "arrow-right",
			Description: "Right-pointing arrow",
			Categories:  []string{"cat-002"},
			Tags:        []string{"arrow", "next", "forward"},
			Colors:      []string{"#000000"},
		},
		svg: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M5 12h14M13 6l6 6-6 6" fill="#000000"/></svg>`,
	},
	{
		icon: store.NewIcon{
			Name:        "trash",
			Description: "Delete action",
			Categories:  []string{"cat-003"},
			Tags:        []string{"delete", "remove", "bin"},
			Colors:      []string{"#d32f2f"},
		},
		svg: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M4 7h16M9 7V4h6v3M6 7l1 13h10l1-13" fill="#d32f2f"/></svg>`,
	},
	{
		icon: store.NewIcon{
			Name:        "toggle",
			Description: "Two-tone toggle switch",
			Categories:  []string{"cat-001"},
			Tags:        []string{"switch", "settings"},
			Colors:      []string{"#1976d2", "#e3f2fd"},
			Multicolor:  true,
		},
		svg: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M7 8h10a4 4 0 0 1 0 8H7a4 4 0 0 1 0-8z" fill="#e3f2fd"/><path d="M17 9a3 3 0 1 1 0 6 3 3 0 0 1 0-6z" fill="#1976d2"/></svg>`,
	},
	{
		icon: store.NewIcon{
			Name:        "search",
			Description: "Magnifying glass",
			Categories:  []string{"cat-003"},
			Tags:        []string{"find", "magnifier"},
			Colors:      []string{"#000000"},
		},
		svg: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M10 4a6 6 0 1 1 0 12 6 6 0 0 1 0-12zM14.5 14.5L20 20" fill="none" stroke="#000000"/></svg>`,
	},
}

func main() {
	flag.Parse()

	dir := *workspace
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dir = filepath.Join(home, "IconVault", "demo")
	}

	fmt.Printf("Seeding workspace at: %s\n", dir)

	logg := logger.New(logger.Config{Environment: "development"})

	backend, err := storage.NewDirectory(dir, logg.Logger)
	if err != nil {
		log.Fatalf("Failed to open workspace: %v", err)
	}
	defer backend.Close()

	s := store.New(backend, logg.Logger)
	ctx := context.Background()
	if err := s.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer s.Close()

	existing := make(map[string]bool)
	for _, icon := range s.Icons.GetAll() {
		existing[icon.Name] = true
	}

	added := 0
	for _, sm := range samples {
		if existing[sm.icon.Name] {
			fmt.Printf("  skip %-12s (already present)\n", sm.icon.Name)
			continue
		}
		iconID, err := s.Icons.Add(ctx, sm.icon, []byte(sm.svg))
		if err != nil {
			log.Fatalf("Failed to add %s: %v", sm.icon.Name, err)
		}
		fmt.Printf("  add  %-12s %s\n", sm.icon.Name, iconID)
		added++
	}

	stats := s.Icons.Stats()
	fmt.Printf("\nDone: %d added, %d icons total across %d categories\n",
		added, stats.Total, stats.UsedCategories)
}
