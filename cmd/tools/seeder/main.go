package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/fedya1922n/food-shop/internal/cart"
	"github.com/fedya1922n/food-shop/internal/config"
	"github.com/fedya1922n/food-shop/internal/history"
)

// Seeds a demo cart and purchase history into Redis so the API has data to
// serve on a fresh install.
func main() {
	cfg := config.MustLoad()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}

	seedCart(ctx, client)
	seedPurchases(ctx, client)

	log.Println("Seeding completed successfully!")
}

func seedCart(ctx context.Context, client *redis.Client) {
	ten := 10
	lines := []cart.Line{
		{ID: "p-milk", Name: "milk", Price: 12000, Image: "/images/milk.png"},
		{ID: "p-milk", Name: "milk", Price: 12000, Image: "/images/milk.png"},
		{ID: "p-bread", Name: "bread", Price: 4000, Image: "/images/bread.png"},
		{ID: "p-apples", Name: "apples", Price: 18000, Image: "/images/apples.png", Discount: &ten},
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		log.Fatalf("Failed to marshal cart lines: %v", err)
	}

	log.Println("Seeding cart...")
	if err := client.Set(ctx, "cart", raw, 0).Err(); err != nil {
		log.Fatalf("Failed to seed cart: %v", err)
	}
}

func seedPurchases(ctx context.Context, client *redis.Client) {
	fifteen := 15
	records := []history.Record{
		{
			ID:   uuid.New(),
			Date: time.Now().Add(-72 * time.Hour),
			Items: []history.RecordItem{
				{ID: "p-rice", Name: "Guruch", Quantity: 1, Price: 22000},
				{ID: "p-tea", Name: "Qora choy", Quantity: 2, Price: 30000, Discount: &fifteen},
			},
			TotalPrice: 73000,
			Currency:   "soʻm",
		},
		{
			ID:   uuid.New(),
			Date: time.Now().Add(-24 * time.Hour),
			Items: []history.RecordItem{
				{ID: "p-eggs", Name: "Tuxum", Quantity: 1, Price: 16000},
			},
			TotalPrice: 16000,
			Currency:   "soʻm",
		},
	}

	raw, err := json.Marshal(records)
	if err != nil {
		log.Fatalf("Failed to marshal purchase records: %v", err)
	}

	log.Println("Seeding purchases...")
	if err := client.Set(ctx, "purchases", raw, 0).Err(); err != nil {
		log.Fatalf("Failed to seed purchases: %v", err)
	}
}
