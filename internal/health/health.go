package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type CheckResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// ProbeRunner answers readiness by running every probe concurrently under a
// shared timeout.
type ProbeRunner struct {
	probes  []Probe
	timeout time.Duration
}

func NewProbeRunner(probes ...Probe) *ProbeRunner {
	return &ProbeRunner{probes: probes, timeout: 5 * time.Second}
}

func (r *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make([]CheckResult, len(r.probes))
	g, gctx := errgroup.WithContext(ctx)
	for i, probe := range r.probes {
		g.Go(func() error {
			if err := probe.Check(gctx); err != nil {
				results[i] = CheckResult{Name: probe.Name, Status: "unhealthy", Error: err.Error()}
				return err
			}
			results[i] = CheckResult{Name: probe.Name, Status: "healthy"}
			return nil
		})
	}
	err := g.Wait()
	return err == nil, results
}

func DatabaseProbe(db *gorm.DB) Probe {
	return Probe{
		Name: "postgres",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

func RedisProbe(client redis.UniversalClient) Probe {
	return Probe{
		Name: "redis",
		Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}
