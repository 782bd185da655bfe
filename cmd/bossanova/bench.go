package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing/fstest"
	"time"

	"github.com/MrEthical07/bossanova/cache"
	"github.com/MrEthical07/bossanova/jwt"
	"github.com/MrEthical07/bossanova/translate"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	tokens      int
	phrases     int
	ops         int
	concurrency int
	redisAddr   string
}

func newBenchCmd(a *app) *cobra.Command {
	o := benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure token verification and translation throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.tokens <= 0 || o.phrases <= 0 || o.ops <= 0 || o.concurrency <= 0 {
				return fmt.Errorf("tokens, phrases, ops and concurrency must be > 0")
			}
			if o.redisAddr == "" {
				o.redisAddr = a.cfg.Cache.RedisAddr
			}
			return runBench(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}
	cmd.Flags().IntVar(&o.tokens, "tokens", 10000, "number of distinct tokens to verify")
	cmd.Flags().IntVar(&o.phrases, "phrases", 500, "number of dictionary phrases")
	cmd.Flags().IntVar(&o.ops, "ops", 100000, "operations per phase")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", 64, "number of concurrent workers")
	cmd.Flags().StringVar(&o.redisAddr, "redis-addr", "", "redis address for the dictionary cache; if empty, REDIS_ADDR or miniredis is used")
	return cmd
}

func runBench(ctx context.Context, out io.Writer, o benchOptions) error {
	var client redis.UniversalClient
	if o.redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start miniredis: %w", err)
		}
		defer mr.Close()
		o.redisAddr = mr.Addr()
		fmt.Fprintf(out, "using miniredis at %s\n", o.redisAddr)
	} else {
		fmt.Fprintf(out, "using redis at %s\n", o.redisAddr)
	}
	client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{o.redisAddr}})
	defer client.Close()

	m, err := jwt.NewManager(jwt.Config{SigningKey: []byte("bench-signing-key")})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "signing %d tokens...\n", o.tokens)
	startSeed := time.Now()
	tokens := make([]string, o.tokens)
	for i := range tokens {
		tokens[i], err = m.CreateToken(jwt.Claims{
			"uid": fmt.Sprintf("user-%d", i),
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "signed in %s\n", time.Since(startSeed).Round(time.Millisecond))

	src, page := benchDictionary(o.phrases)
	store := cache.NewRedisStore(client, 0)
	cold := translate.NewLoader(src, translate.WithCache(store, ""))
	if _, err := cold.LoadDictionary(ctx, "eo", true); err != nil {
		return err
	}

	verifyStats := runPhase(o.ops, o.concurrency, func(r *rand.Rand) error {
		_, err := m.ExtractToken(tokens[r.Intn(len(tokens))])
		return err
	})

	warm := translate.NewTranslator(translate.NewLoader(fstest.MapFS{}, translate.WithCache(store, "")))
	translateStats := runPhase(o.ops, o.concurrency, func(*rand.Rand) error {
		if got := warm.Run(ctx, page, "eo", false); strings.Contains(got, translate.StartMarker) {
			return fmt.Errorf("untranslated marker left")
		}
		return nil
	})

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "verify", verifyStats)
	printStats(out, "translate", translateStats)
	return nil
}

// benchDictionary returns a dictionary source of n phrases for the synthetic
// locale eo and a page marking every phrase once.
func benchDictionary(n int) (fstest.MapFS, string) {
	var dict, page strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&dict, "phrase %d|translation %d\n", i, i)
		fmt.Fprintf(&page, "<li>^^[phrase %d]^^</li>\n", i)
	}
	return fstest.MapFS{"eo.csv": {Data: []byte(dict.String())}}, page.String()
}

func runPhase(ops, concurrency int, op func(*rand.Rand) error) phaseStats {
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
				err := op(r)
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
	return samples[(len(samples)-1)*p/100]
}

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
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
