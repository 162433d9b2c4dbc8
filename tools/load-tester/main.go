package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Hammers the read endpoints (status and run history) of a running sync
// server, mainly to stress the API key cache and the audit queries.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the sync server")
	apiKey := flag.String("api-key", "supersecretkey", "API Key for authentication")
	tenantID := flag.String("tenant", "", "Tenant ID to query (required)")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 500, "Requests per second limit")
	flag.Parse()

	if *tenantID == "" {
		log.Fatal("-tenant is required")
	}

	targets := []string{
		fmt.Sprintf("%s/api/v1/sync/%s/status", *baseURL, *tenantID),
		fmt.Sprintf("%s/api/v1/sync/%s/runs?limit=10", *baseURL, *tenantID),
	}

	log.Printf("Starting load test on %s", *baseURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", *concurrency, *duration, *rps)

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 100) // Allow bursts up to 100

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{
				Timeout: 5 * time.Second,
			}

			for n := 0; ; n++ {
				select {
				case <-ctx.Done():
					return
				default:
					limiter.Wait(ctx)

					req, err := http.NewRequestWithContext(ctx, http.MethodGet, targets[n%len(targets)], nil)
					if err != nil {
						continue
					}
					req.Header.Set("X-API-Key", *apiKey)

					resp, err := client.Do(req)
					if err != nil {
						errorCount.Add(1)
						continue
					}

					if resp.StatusCode == http.StatusOK {
						successCount.Add(1)
					} else {
						errorCount.Add(1)
					}
					resp.Body.Close()
				}
			}
		}(i)
	}

	wg.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (200 OK): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}
