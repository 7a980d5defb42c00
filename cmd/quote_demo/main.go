package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"speedyvan/internal/ai"
	"speedyvan/internal/config"
	"speedyvan/internal/modules/pricing"
)

func main() {
	var req pricing.QuoteRequest
	flag.Float64Var(&req.DistanceKm, "km", 10, "distance in km")
	flag.Float64Var(&req.VolumeCubicMeters, "m3", 5, "volume in cubic metres")
	flag.StringVar(&req.ServiceType, "service", pricing.ServiceHouseMove, "service type")
	flag.IntVar(&req.ItemCount, "items", 3, "number of items")
	flag.IntVar(&req.PickupFloorNumber, "pickup-floor", 0, "pickup floor")
	flag.IntVar(&req.DropoffFloorNumber, "dropoff-floor", 0, "dropoff floor")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.AI.RemoteKey() == "" {
		log.Fatalf("no api key set for provider %q (GROQ_API_KEY or GEMINI_API_KEY)", cfg.AI.Provider)
	}

	ctx := context.Background()
	gen, closeGen, err := ai.NewGenerator(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer closeGen()

	tariff := pricing.DefaultConfig()
	remote := pricing.NewRemoteQuoter(gen, tariff, pricing.WithRemoteTimeout(cfg.AI.Timeout))

	fmt.Printf("Provider: %s\n", remote.Name())
	quote, err := remote.Quote(ctx, req)
	if err != nil {
		fmt.Printf("Remote quote failed: %v\n", err)
		quote = pricing.CalculateQuote(req, tariff, time.Now())
		fmt.Println("Deterministic quote:")
	} else {
		fmt.Println("Remote quote:")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(quote); err != nil {
		log.Fatal(err)
	}
}
