// Package main provides bpstore-bench, a load generator for pkg/bpstore.
package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/thnkslprpt/bplib/internal/bplog"
	"github.com/thnkslprpt/bplib/pkg/bpfs"
	"github.com/thnkslprpt/bplib/pkg/bpstore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// result holds the run's tallies, shared by every writer and reader
// goroutine (updated atomically) and reported once they have all finished.
type result struct {
	enqueued int64
	dequeued int64
	relinqed int64
}

func run(args []string, out, errOut *os.File) int {
	fs := flag.NewFlagSet("bpstore-bench", flag.ContinueOnError)
	fs.SetOutput(errOut)

	root := fs.String("root", "/bench-store", "store root path (lives on an in-memory fake filesystem)")
	writers := fs.Int("writers", 4, "number of concurrent enqueue goroutines")
	readers := fs.Int("readers", 4, "number of concurrent dequeue+relinquish goroutines")
	perWriter := fs.Int("records-per-writer", 1000, "records each writer enqueues")
	recordSize := fs.Int("record-size", 64, "size in bytes of each enqueued record")
	cacheSize := fs.Int("cache-size", bpstore.DefaultCacheSize, "store data cache size")
	jsonLogs := fs.Bool("json-logs", false, "emit structured JSON logs instead of console-formatted ones")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(errOut, err)
		return 2
	}

	bplog.Init(bplog.Config{Level: bplog.LevelInfo, JSONOutput: *jsonLogs, Output: errOut})
	log := bplog.Component("bpstore-bench")

	mgr := bpstore.NewManager(bpfs.NewFake())
	h, err := mgr.Create(bpstore.Config{RootPath: *root, CacheSize: *cacheSize})
	if err != nil {
		log.Error().Err(err).Msg("failed to create store")
		return 1
	}
	defer mgr.Destroy(h)

	totalRecords := int64(*writers) * int64(*perWriter)
	payload := make([]byte, *recordSize)
	for i := range payload {
		payload[i] = byte(i)
	}

	log.Info().
		Int("writers", *writers).
		Int("readers", *readers).
		Int64("total_records", totalRecords).
		Int("record_size", *recordSize).
		Msg("starting run")

	var res result
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < *perWriter; j++ {
				if _, err := mgr.Enqueue(h, payload); err != nil {
					log.Error().Err(err).Msg("enqueue failed")
					continue
				}
				atomic.AddInt64(&res.enqueued, 1)
			}
		}()
	}

	for i := 0; i < *readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for atomic.LoadInt64(&res.dequeued) < totalRecords {
				obj, err := mgr.Dequeue(h, 100)
				if err != nil {
					continue
				}
				atomic.AddInt64(&res.dequeued, 1)
				if err := mgr.Relinquish(h, obj.SID); err != nil {
					log.Error().Err(err).Msg("relinquish failed")
					continue
				}
				atomic.AddInt64(&res.relinqed, 1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	remaining, err := mgr.GetCount(h)
	if err != nil {
		log.Error().Err(err).Msg("GetCount failed")
	}

	fmt.Fprintf(out, "enqueued=%d dequeued=%d relinquished=%d remaining=%d elapsed=%s throughput=%.0f records/s\n",
		res.enqueued, res.dequeued, res.relinqed, remaining, elapsed,
		float64(res.enqueued+res.dequeued)/elapsed.Seconds())

	return 0
}
