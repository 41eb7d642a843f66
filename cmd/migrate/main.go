package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	authadapters "places_backend/internal/feature/auth/adapters"
	placesadapters "places_backend/internal/feature/places/adapters"
	"places_backend/internal/platform/db"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// 接続は最大60秒リトライする
	gdb, err := db.Open(db.LoadConfigFromEnv())
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	models := append(authadapters.Models(), placesadapters.Models()...)
	if err := db.Migrate(gdb.WithContext(ctx), models...); err != nil {
		log.Fatal(err)
	}
	log.Println("migrate ok")
}
