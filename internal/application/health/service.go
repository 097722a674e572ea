package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"wager-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Pinger is an optional dependency probe. A nil Pinger is reported as
// disconnected.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CollectResult is the /health/json payload.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	Alloc    int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// Deps are the probes reported under "dependencies". Kafka is optional and
// only listed when configured.
type Deps struct {
	Redis    *redis.Client
	Database Pinger
	Kafka    Pinger
}

// CollectHealth probes every dependency concurrently and reads the request
// counters recorded by middleware.HealthMarker.
func CollectHealth(ctx context.Context, deps Deps) CollectResult {
	result := CollectResult{Dependencies: make(map[string]DepStatus)}

	var dbStatus, redisStatus, kafkaStatus DepStatus
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dbStatus = probe(gctx, deps.Database)
		return nil
	})
	g.Go(func() error {
		if deps.Redis == nil {
			redisStatus = probe(gctx, nil)
			return nil
		}
		redisStatus = probe(gctx, redisPinger{deps.Redis})
		return nil
	})
	if deps.Kafka != nil {
		g.Go(func() error {
			kafkaStatus = probe(gctx, deps.Kafka)
			return nil
		})
	}
	_ = g.Wait()

	result.Dependencies["database"] = dbStatus
	result.Dependencies["redis"] = redisStatus
	if deps.Kafka != nil {
		result.Dependencies["kafka"] = kafkaStatus
	}

	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()
	if redisStatus.Status == "connected" {
		rdb := deps.Redis
		totalReq, _ := rdb.Get(ctx, middleware.KeyReqTotal).Result()
		totalErr, _ := rdb.Get(ctx, middleware.KeyReqErrors).Result()
		totalTime, _ := rdb.Get(ctx, middleware.KeyResTime).Result()
		resCount, _ := rdb.Get(ctx, middleware.KeyResCount).Result()
		startTimeStr, _ := rdb.Get(ctx, middleware.KeyStartTime).Result()
		lastReqStr, _ := rdb.Get(ctx, middleware.KeyLastReq).Result()

		if startTimeStr != "" {
			if t, err := strconv.ParseInt(startTimeStr, 10, 64); err == nil {
				startTimeMs = t
			}
		} else {
			rdb.Set(ctx, middleware.KeyStartTime, startTimeMs, 0)
		}

		stats.TotalRequests, _ = strconv.Atoi(totalReq)
		stats.FailedCount, _ = strconv.Atoi(totalErr)
		stats.SuccessCount = stats.TotalRequests - stats.FailedCount
		if stats.TotalRequests > 0 {
			stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
		}
		timeSum, _ := strconv.ParseFloat(totalTime, 64)
		countSum, _ := strconv.Atoi(resCount)
		if countSum > 0 {
			stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
		}
		if lastReqStr != "" {
			var lastReq map[string]interface{}
			_ = json.Unmarshal([]byte(lastReqStr), &lastReq)
			stats.LastRequest = lastReq
		}
	}
	result.Traffic = stats

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{Alloc: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	result.Status = "ok"
	for _, d := range result.Dependencies {
		if d.Status != "connected" {
			result.Status = "issue"
		}
	}
	return result
}

func probe(ctx context.Context, p Pinger) DepStatus {
	if p == nil {
		return DepStatus{Status: "disconnected"}
	}
	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

type redisPinger struct{ rdb *redis.Client }

func (r redisPinger) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }
