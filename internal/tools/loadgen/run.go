package loadgen

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// Config drives a synthetic traffic run against a live instance.
type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests uint64
	Failures      uint64
	StatusClasses map[string]uint64
	P95Latency    time.Duration
}

var trackedArticles = []struct {
	ID   string
	Slug string
}{
	{"a1f3", "council-approves-tram-extension"},
	{"b7c2", "harbor-bridge-reopens-after-repairs"},
	{"c9d8", "local-derby-ends-in-late-draw"},
	{"d4e1", "storm-front-expected-over-weekend"},
}

var pageRoutes = []string{"/", "/about", "/category/economy", "/city/izmir"}

// Run fires the chosen traffic profile at the target and aggregates the
// outcome. The context cancels an in-flight attack early.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	profile := normalizeProfile(cfg.Profile)
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.RPS <= 0 || cfg.Duration <= 0 {
		return nil, fmt.Errorf("rps and duration must be positive")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	targeter, err := newTargeter(base, profile, rng)
	if err != nil {
		return nil, err
	}

	workers := uint64(cfg.Concurrency)
	if workers == 0 {
		workers = 4
	}
	attacker := vegeta.NewAttacker(
		vegeta.Workers(workers),
		vegeta.Timeout(10*time.Second),
		vegeta.KeepAlive(true),
	)

	rate := vegeta.Rate{Freq: cfg.RPS, Per: time.Second}
	var metrics vegeta.Metrics
	classes := map[string]uint64{}
	for res := range attacker.Attack(targeter, rate, cfg.Duration, "analytics-loadgen") {
		select {
		case <-ctx.Done():
			attacker.Stop()
		default:
		}
		metrics.Add(res)
		classes[classifyStatusClass(int(res.Code))]++
	}
	metrics.Close()

	out := &Result{
		TotalRequests: metrics.Requests,
		StatusClasses: classes,
		P95Latency:    metrics.Latencies.P95,
	}
	out.Failures = classes["4xx"] + classes["5xx"] + classes["other"]
	if err := ctx.Err(); err != nil && out.TotalRequests == 0 {
		return out, err
	}
	return out, nil
}

func newTargeter(base, profile string, rng *rand.Rand) (vegeta.Targeter, error) {
	switch profile {
	case "track", "read", "mixed":
	default:
		return nil, fmt.Errorf("unknown profile %q", profile)
	}
	return func(t *vegeta.Target) error {
		if t == nil {
			return vegeta.ErrNilTarget
		}
		useTrack := profile == "track" || (profile == "mixed" && rng.Intn(100) < 70)
		if useTrack {
			fillTrackTarget(t, base, rng)
			return nil
		}
		fillReadTarget(t, base, rng)
		return nil
	}, nil
}

func fillTrackTarget(t *vegeta.Target, base string, rng *rand.Rand) {
	t.Method = http.MethodPost
	t.URL = base + "/track-view"
	t.Header = http.Header{"Content-Type": []string{"application/json"}}
	if rng.Intn(100) < 80 {
		a := trackedArticles[rng.Intn(len(trackedArticles))]
		t.Body = []byte(fmt.Sprintf(
			`{"contentType":"news","contentId":"%s","slug":"%s","route":"/news/%s"}`,
			a.ID, a.Slug, a.Slug,
		))
		return
	}
	route := pageRoutes[rng.Intn(len(pageRoutes))]
	t.Body = []byte(fmt.Sprintf(`{"contentType":"page","route":"%s"}`, route))
}

func fillReadTarget(t *vegeta.Target, base string, rng *rand.Rand) {
	t.Method = http.MethodGet
	switch rng.Intn(3) {
	case 0:
		t.URL = base + "/api/v1/ads"
	case 1:
		t.URL = base + "/api/v1/news/breaking"
	default:
		a := trackedArticles[rng.Intn(len(trackedArticles))]
		t.URL = base + "/api/v1/news/" + a.Slug
	}
}

func classifyStatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return "other"
	}
}

func normalizeProfile(profile string) string {
	p := strings.ToLower(strings.TrimSpace(profile))
	if p == "" {
		return "mixed"
	}
	return p
}
