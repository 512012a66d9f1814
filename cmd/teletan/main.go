package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medverify/verification-services/internal/teletan"
)

// Operator utility: mints TeleTAN codes straight into the Redis store, for
// environments where the HTTP endpoint is not reachable (e.g. seeding tests).
func main() {
	count := flag.Int("count", 1, "number of TeleTANs to mint")
	ttl := flag.Duration("ttl", time.Hour, "how long minted codes stay redeemable")
	flag.Parse()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port, Password: os.Getenv("REDIS_PASSWORD"), DB: db})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("cannot connect to Redis (%s:%s): %v", host, port, err)
	}

	svc := teletan.NewService(teletan.NewRedisStore(client, ""), *ttl)
	for i := 0; i < *count; i++ {
		code, err := svc.GenerateTeleTan(ctx)
		if err != nil {
			log.Fatalf("mint failed: %v", err)
		}
		fmt.Println(code)
	}
}
