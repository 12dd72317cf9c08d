package main

import (
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/meal-planner/internal/config"
	"github.com/fdg312/meal-planner/internal/dbmigrate"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: go run ./cmd/migrate [up|status|down] [migrations-dir]")
	}

	command := os.Args[1]
	switch command {
	case "up", "status", "down":
	default:
		log.Fatalf("unsupported command %q (allowed: up, status, down)", command)
	}

	// без каталога используются миграции, встроенные в бинарник
	dir := ""
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	cfg := config.Load()
	target, err := dbmigrate.SelectTarget(cfg, false)
	if err != nil {
		log.Fatal(err)
	}

	if target.Warning != "" {
		log.Printf("WARN migrate: %s", target.Warning)
	}
	log.Printf("migrate: command=%s using=%s dir=%s", command, target.Source, describeDir(dir))

	if err := dbmigrate.Run(command, target.URL, dir); err != nil {
		log.Fatal(err)
	}

	log.Printf("migrate: %s completed successfully", command)
}

func describeDir(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}
