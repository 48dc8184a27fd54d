package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"marketplace/internal/auth"
	"marketplace/internal/cache"
	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/model"
	"marketplace/internal/repository"
)

const (
	seedUsers    = 5
	seedPassword = "password123"
)

var catalog = []struct {
	title string
	price string
}{
	{"Smart TV", "599.99"},
	{"Turntable", "149.50"},
	{"Mechanical Keyboard", "89.00"},
	{"Road Bike", "1250.00"},
	{"Espresso Machine", "320.75"},
	{"Noise Cancelling Headphones", "199.99"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Product{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	tokens := auth.NewTokenService(userRepo, auth.NewTokenStore(cacheClient))

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	ctx := context.Background()
	created := 0
	for i := 0; i < seedUsers; i++ {
		user := &model.User{
			// uuid keeps re-runs from tripping the unique email index
			Email:        fmt.Sprintf("seller-%s@example.com", uuid.NewString()[:8]),
			PasswordHash: string(hash),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		if _, err := tokens.Generate(ctx, user); err != nil {
			log.Fatalf("Failed to generate auth token: %v", err)
		}

		for j := 0; j <= i; j++ {
			item := catalog[(i+j)%len(catalog)]
			price, err := decimal.NewFromString(item.price)
			if err != nil {
				log.Fatalf("Bad catalog price %q: %v", item.price, err)
			}
			product := &model.Product{
				Title:  item.title,
				Price:  price,
				UserID: user.ID,
			}
			if err := productRepo.Create(ctx, product); err != nil {
				log.Fatalf("Failed to create product: %v", err)
			}
			created++
		}
		log.Printf("Seeded %s with %d products (password %q)", user.Email, i+1, seedPassword)
	}

	log.Printf("Seed complete: %d users, %d products", seedUsers, created)
}
