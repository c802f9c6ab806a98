package main

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/gradio-app/trackio-go/pkg/sdk"
	"github.com/gradio-app/trackio-go/pkg/sdk/runtime"
)

// Simulates a small training loop logging metrics to a local Trackio
// server. Start the server first: go run ./cmd/server
func main() {
	client, err := sdk.New(sdk.ClientConfig{
		Project: "example-training",
	})
	if err != nil {
		log.Fatalf("Failed to create Trackio client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Printf("Close: %v", err)
		}
	}()

	log.Printf("Logging to project %q, run %q", client.Project(), client.Run())

	// Runtime metrics (goroutines, heap, GC) alongside the training metrics.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := runtime.NewCollector(client, 5*time.Second)
	go collector.Start(ctx)

	const epochs = 3
	const stepsPerEpoch = 50

	for epoch := 0; epoch < epochs; epoch++ {
		for i := 0; i < stepsPerEpoch; i++ {
			step := epoch*stepsPerEpoch + i
			progress := float64(step) / float64(epochs*stepsPerEpoch)

			// Loss decays with noise, accuracy climbs.
			loss := 2.0*math.Exp(-3.0*progress) + rand.Float64()*0.05
			acc := 1.0 - loss/2.5

			client.Log(map[string]any{
				"train/loss":     loss,
				"train/accuracy": acc,
				"train/lr":       0.001 * math.Pow(0.95, float64(epoch)),
				"epoch":          epoch,
			}, nil, "")

			time.Sleep(50 * time.Millisecond)
		}

		// Epoch boundary: push everything buffered so the dashboard
		// catches up before the next epoch starts.
		if err := client.Flush(context.Background()); err != nil {
			log.Printf("Flush: %v", err)
		}
		log.Printf("Epoch %d/%d complete", epoch+1, epochs)
	}

	log.Println("Training complete")
}
