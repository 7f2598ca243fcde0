package obscheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kentbulteni/analytics-service/internal/tools/common"
	"github.com/kentbulteni/analytics-service/internal/tools/loadgen"
	"github.com/kentbulteni/analytics-service/internal/tools/ui"
)

// Counter names as Mimir stores them after the OTLP translation of the
// service's track.requests and track.counter.increments instruments.
const (
	trackRequestsMetric   = "track_requests_total"
	counterBumpsMetric    = "track_counter_increments_total"
	pipelineFlushInterval = 8 * time.Second
)

type options struct {
	grafanaURL      string
	grafanaUser     string
	grafanaPassword string
	serviceName     string
	window          time.Duration
	ci              bool
	baseURL         string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "obscheck", Short: "Verify the view-tracking metrics, traces and logs end to end"}
	cmd.PersistentFlags().StringVar(&opts.grafanaURL, "grafana-url", "http://localhost:3000", "Grafana base URL")
	cmd.PersistentFlags().StringVar(&opts.grafanaUser, "grafana-user", "admin", "Grafana username")
	cmd.PersistentFlags().StringVar(&opts.grafanaPassword, "grafana-password", "admin", "Grafana password")
	cmd.PersistentFlags().StringVar(&opts.serviceName, "service-name", "analytics-service", "OTel service name")
	cmd.PersistentFlags().DurationVar(&opts.window, "window", 20*time.Minute, "query lookback window")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "API base URL for traffic")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Drive /track-view traffic and validate counters, a track trace and its logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "obscheck run", func(ctx context.Context) ([]string, error) {
				lgRes, err := loadgen.Run(ctx, loadgen.Config{
					BaseURL:     opts.baseURL,
					Profile:     "track",
					Duration:    6 * time.Second,
					RPS:         20,
					Concurrency: 6,
					Seed:        42,
				})
				if err != nil {
					return nil, err
				}
				details := []string{fmt.Sprintf("track traffic total=%d failures=%d", lgRes.TotalRequests, lgRes.Failures)}
				time.Sleep(pipelineFlushInterval)

				requests, err := counterIncrease(ctx, *opts, trackRequestsMetric)
				if err != nil {
					return details, err
				}
				if requests <= 0 {
					return details, fmt.Errorf("%s did not move within the window", trackRequestsMetric)
				}
				details = append(details, fmt.Sprintf("%s increase=%.0f", trackRequestsMetric, requests))

				bumps, err := counterIncrease(ctx, *opts, counterBumpsMetric)
				if err != nil {
					return details, err
				}
				if bumps <= 0 {
					return details, fmt.Errorf("%s did not move: views were accepted but never counted", counterBumpsMetric)
				}
				details = append(details, fmt.Sprintf("%s increase=%.0f", counterBumpsMetric, bumps))

				traceID, err := findTrackTrace(ctx, *opts)
				if err != nil {
					return details, err
				}
				details = append(details, "track-view trace_id="+traceID)

				if err := verifyLokiTraceLogs(ctx, *opts, traceID); err != nil {
					return details, err
				}
				details = append(details, "loki trace correlation: ok")
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "obscheck run", details, err)
			}
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		return fn(ctx)
	}
	return ui.Run(title, fn)
}

func grafanaGET(ctx context.Context, opts options, path string) ([]byte, error) {
	u, err := url.Parse(opts.grafanaURL)
	if err != nil {
		return nil, err
	}
	rel, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.ResolveReference(rel).String(), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(opts.grafanaUser, opts.grafanaPassword)
	resp, err := (&http.Client{Timeout: 20 * time.Second}).Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("grafana request failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// counterIncrease runs a Mimir instant query for the counter's increase over
// the lookback window, summed across label sets, scoped to the service.
func counterIncrease(ctx context.Context, opts options, metric string) (float64, error) {
	promQL := fmt.Sprintf("sum(increase(%s{job=%q}[%ds]))", metric, opts.serviceName, int(opts.window.Seconds()))
	path := "/api/datasources/proxy/uid/mimir/api/v1/query?query=" + url.QueryEscape(promQL)
	body, err := grafanaGET(ctx, opts, path)
	if err != nil {
		return 0, err
	}
	var payload struct {
		Data struct {
			Result []struct {
				Value []json.RawMessage `json:"value"`
			} `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, err
	}
	if len(payload.Data.Result) == 0 {
		return 0, fmt.Errorf("no samples for %s: is the collector scraping the service?", metric)
	}
	sample := payload.Data.Result[0].Value
	if len(sample) != 2 {
		return 0, fmt.Errorf("malformed instant vector for %s", metric)
	}
	var raw string
	if err := json.Unmarshal(sample[1], &raw); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(raw, 64)
}

// findTrackTrace searches Tempo for a recent server span of POST /track-view
// and returns the newest matching trace id.
func findTrackTrace(ctx context.Context, opts options) (string, error) {
	tags := url.QueryEscape(fmt.Sprintf("service.name=%q http.route=\"/track-view\"", opts.serviceName))
	end := time.Now().Unix()
	start := time.Now().Add(-opts.window).Unix()
	path := fmt.Sprintf("/api/datasources/proxy/uid/tempo/api/search?tags=%s&start=%d&end=%d&limit=20", tags, start, end)

	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		body, err := grafanaGET(ctx, opts, path)
		if err != nil {
			lastErr = err
			time.Sleep(2 * time.Second)
			continue
		}
		var payload struct {
			Traces []struct {
				TraceID         string `json:"traceID"`
				StartTimeUnixNs string `json:"startTimeUnixNano"`
			} `json:"traces"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return "", err
		}
		var newestID string
		var newestStart int64
		for _, tr := range payload.Traces {
			if len(tr.TraceID) != 32 {
				continue
			}
			started, _ := strconv.ParseInt(tr.StartTimeUnixNs, 10, 64)
			if started >= newestStart {
				newestStart = started
				newestID = tr.TraceID
			}
		}
		if newestID != "" {
			return newestID, nil
		}
		lastErr = fmt.Errorf("tempo has no /track-view traces yet")
		time.Sleep(2 * time.Second)
	}
	return "", lastErr
}

// verifyLokiTraceLogs confirms the service emitted at least one log line
// carrying the trace id, so a counted view can be walked metric -> trace -> log.
func verifyLokiTraceLogs(ctx context.Context, opts options, traceID string) error {
	nowNS := time.Now().UnixNano()
	startNS := nowNS - opts.window.Nanoseconds()
	q := url.QueryEscape(fmt.Sprintf("{service_name=%q} | json | trace_id=%q", opts.serviceName, traceID))
	path := fmt.Sprintf("/api/datasources/proxy/uid/loki/loki/api/v1/query_range?query=%s&start=%d&end=%d&limit=1&direction=backward", q, startNS, nowNS)

	body, err := grafanaGET(ctx, opts, path)
	if err != nil {
		return err
	}
	var payload struct {
		Data struct {
			Result []json.RawMessage `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return err
	}
	if len(payload.Data.Result) == 0 {
		return fmt.Errorf("no %s logs carry trace_id %s", opts.serviceName, traceID)
	}
	return nil
}
