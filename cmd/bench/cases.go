// README: Smoke cases for the quote API plus a quote throughput check.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"speedyvan/internal/infra"
	"speedyvan/migrations"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

var (
	pickup  = map[string]any{"lat": 51.5079, "lng": -0.0877}
	dropoff = map[string]any{"lat": 51.4545, "lng": -0.9781}
)

func quoteBody() map[string]any {
	return map[string]any{
		"pickupLat":         pickup["lat"],
		"pickupLng":         pickup["lng"],
		"dropoffLat":        dropoff["lat"],
		"dropoffLng":        dropoff["lng"],
		"volumeCubicMeters": 8,
		"serviceType":       "house_move",
		"itemCount":         12,
		"pickupFloorNumber": 2,
		"pickupHasLift":     false,
	}
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				if err := infra.PingRedis(ctx, r.redis); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: StatusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				if err := infra.Migrate(ctx, r.db, migrations.FS); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Migration: widget_quotes exists",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "db not configured"}
				}
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
					"widget_quotes",
				).Scan(&exists)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if !exists {
					return Result{Status: StatusFail, Note: "missing table: widget_quotes"}
				}
				return Result{Status: StatusPass}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, 200),
		httpCaseMethod("API: metrics", http.MethodGet, base+"/metrics", nil, 200),

		httpCase("Distance: London Bridge to Reading", base+"/api/distance", map[string]any{
			"from": pickup,
			"to":   dropoff,
		}, 200, 500),
		httpCase("Geocode: Reading station", base+"/api/geocode", map[string]any{
			"address": "Reading Station, Reading",
			"limit":   3,
		}, 200, 503),
		httpCase("Geocode: short address -> 400", base+"/api/geocode", map[string]any{"address": "RG"}, 400),
		httpCase("Carbon: 65 km estimate", base+"/api/carbon/estimate", map[string]any{"distanceKm": 65}, 200),
		httpCase("Carbon: zero distance -> 400", base+"/api/carbon/estimate", map[string]any{"distanceKm": 0}, 400),

		{
			Name: "Pricing: quote (valid, min price respected)",
			Run: func(ctx context.Context, r *Runner) Result {
				var resp struct {
					Success bool `json:"success"`
					Quote   struct {
						TotalPrice float64 `json:"totalPrice"`
						Currency   string  `json:"currency"`
					} `json:"quote"`
				}
				res := postJSON(ctx, r, base+"/api/pricing/quote", quoteBody(), &resp)
				if res.Status != StatusPass {
					return res
				}
				if !resp.Success || resp.Quote.Currency != "GBP" || resp.Quote.TotalPrice < 60 {
					return Result{Status: StatusFail, Latency: res.Latency, Note: fmt.Sprintf("%+v", resp)}
				}
				res.Note = fmt.Sprintf("total=%.2f", resp.Quote.TotalPrice)
				return res
			},
		},
		httpCase("Pricing: quote (volume over 50 -> 400)", base+"/api/pricing/quote", func() map[string]any {
			b := quoteBody()
			b["volumeCubicMeters"] = 75
			return b
		}(), 400),
		httpCase("Pricing: quote (missing fields -> 400)", base+"/api/pricing/quote", map[string]any{}, 400),

		httpCase("Lock: default days", base+"/api/pricing/lock", map[string]any{"quotePrice": 420}, 200),
		httpCase("Lock: lockDays 31 -> 400", base+"/api/pricing/lock", map[string]any{"quotePrice": 420, "lockDays": 31}, 400),

		httpCase("Widget: bad move size -> 400", base+"/api/quote/widget", map[string]any{
			"fromPostcode": "SW1A 1AA",
			"toPostcode":   "RG1 1AA",
			"moveSize":     "enormous",
		}, 400),
		httpCase("Widget: postcode quote", base+"/api/quote/widget", map[string]any{
			"fromPostcode": "SW1A 1AA",
			"toPostcode":   "RG1 1AA",
			"moveSize":     "medium",
		}, 200, 503),
		httpCaseMethod("Widget: unknown quote -> 404", http.MethodGet, base+"/api/quote/00000000-0000-0000-0000-000000000000", nil, 404, 503),

		{
			Name: "Perf: quote throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/pricing/quote", quoteBody())
			},
		},
	}
}

func httpCase(name, url string, body any, okStatuses ...int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses...)
}

func httpCaseMethod(name, method, url string, body any, okStatuses ...int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, latency, err := do(ctx, r, method, url, body, nil)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			note := fmt.Sprintf("status=%d", status)
			if contains(okStatuses, status) {
				return Result{Status: StatusPass, Latency: latency, Note: note}
			}
			return Result{Status: StatusFail, Latency: latency, Note: note}
		},
	}
}

func postJSON(ctx context.Context, r *Runner, url string, body, out any) Result {
	status, latency, err := do(ctx, r, http.MethodPost, url, body, out)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if status != http.StatusOK {
		return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
	}
	return Result{Status: StatusPass, Latency: latency}
}

func do(ctx context.Context, r *Runner, method, url string, body, out any) (int, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, 0, err
		}
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, latency, fmt.Errorf("decode: %w", err)
		}
		return resp.StatusCode, latency, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, latency, nil
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				mu.Lock()
				if err != nil || resp.StatusCode != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
				if err == nil {
					_, _ = io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}
