// Command docsession-loadtest benchmarks docsession against a Redis store.
// Without -redis-addr (or REDIS_ADDR) it runs against an embedded miniredis.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hlynes/docsession"
	"github.com/hlynes/docsession/docstore"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (load + resave)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		collection  = flag.String("collection", docstore.DefaultCollection, "session collection name")
		maxAge      = flag.Duration("max-age", time.Hour, "session max age (0 = no expiry)")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store, err := docstore.NewRedisStore(client, *collection)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store: %v\n", err)
		os.Exit(1)
	}

	storage, err := docsession.New().
		WithStore(store).
		WithMaxAge(*maxAge).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	keys, err := seedSessions(storage, *sessions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	printStats("load  ", runLoadPhase(storage, keys, *ops, *concurrency))
	printStats("resave", runResavePhase(storage, keys, *ops, *concurrency))

	snap := storage.MetricsSnapshot()
	fmt.Printf("hits=%d misses=%d rejected=%d writes=%d\n",
		snap.Counters[docsession.MetricLoadHit],
		snap.Counters[docsession.MetricLoadMiss],
		snap.Counters[docsession.MetricLoadRejected],
		snap.Counters[docsession.MetricSaveWritten],
	)
}

// seedSessions saves n fresh sessions through the public API and collects the
// keys handed out via Set-Cookie.
func seedSessions(storage *docsession.Storage, n int) ([]string, error) {
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		sess, err := storage.Load(req)
		if err != nil {
			return nil, err
		}
		sess.Set("seq", i)
		sess.Set("worker", "seed")

		rec := httptest.NewRecorder()
		if err := storage.Save(rec, req, sess); err != nil {
			return nil, err
		}

		key := cookieValue(rec, storage.CookieName())
		if key == "" {
			return nil, fmt.Errorf("seed %d: no session cookie set", i)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func runLoadPhase(storage *docsession.Storage, keys []string, ops, concurrency int) phaseStats {
	return runPhase(ops, concurrency, func(r *rand.Rand, _ int) error {
		key := keys[r.Intn(len(keys))]
		req := requestWithCookie(storage.CookieName(), key)
		sess, err := storage.Load(req)
		if err != nil {
			return err
		}
		if sess.IsNew() {
			return fmt.Errorf("session %s not restored", key)
		}
		return nil
	})
}

func runResavePhase(storage *docsession.Storage, keys []string, ops, concurrency int) phaseStats {
	return runPhase(ops, concurrency, func(r *rand.Rand, i int) error {
		key := keys[r.Intn(len(keys))]
		req := requestWithCookie(storage.CookieName(), key)
		sess, err := storage.Load(req)
		if err != nil {
			return err
		}
		sess.Set("seq", i)
		return storage.Save(httptest.NewRecorder(), req, sess)
	})
}

func runPhase(ops, concurrency int, op func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func requestWithCookie(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: name, Value: value})
	return req
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
