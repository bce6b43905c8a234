// Package main provides bpnode, a demo binary that wires a memory pool and
// a persistent store together from a config file and puts one bundle
// through them.
package main

import (
	"fmt"
	"os"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/thnkslprpt/bplib/internal/bpconfig"
	"github.com/thnkslprpt/bplib/internal/bplog"
	"github.com/thnkslprpt/bplib/pkg/bpblock"
	"github.com/thnkslprpt/bplib/pkg/bpfs"
	"github.com/thnkslprpt/bplib/pkg/bpstore"
	"github.com/thnkslprpt/bplib/pkg/bpwire"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut *os.File) int {
	fs := flag.NewFlagSet("bpnode", flag.ContinueOnError)
	fs.SetOutput(errOut)

	configPath := fs.String("config", "", "path to a HuJSON node config file")
	jsonLogs := fs.Bool("json-logs", false, "emit structured JSON logs instead of console-formatted ones")
	interactive := fs.Bool("interactive", false, "drop into an interactive REPL after startup")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(errOut, err)
		return 2
	}

	bplog.Init(bplog.Config{Level: bplog.LevelInfo, JSONOutput: *jsonLogs, Output: errOut})
	log := bplog.Component("bpnode")

	cfg := bpconfig.DefaultConfig()
	if *configPath != "" {
		loaded, err := bpconfig.LoadHuJSON(*configPath)
		if err != nil {
			log.Error().Err(err).Str("path", *configPath).Msg("failed to load config")
			return 1
		}
		cfg = loaded
	}
	cfg.ApplyDefaults()

	pool := bpblock.NewPool(cfg.Pool.RecordCount)
	log.Info().Int("record_count", pool.Capacity()).Msg("memory pool created")

	mgr := bpstore.NewManager(bpfs.NewReal())
	storeHandle, err := mgr.Create(bpstore.Config{
		RootPath:  cfg.Store.RootPath,
		CacheSize: cfg.Store.CacheSize,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create store")
		return 1
	}
	defer mgr.Destroy(storeHandle)

	log.Info().Str("root", cfg.Store.RootPath).Msg("persistent store opened")

	if err := demoRoundTrip(pool, mgr, storeHandle, log); err != nil {
		log.Error().Err(err).Msg("demo round trip failed")
		return 1
	}

	if *interactive {
		return runREPL(mgr, storeHandle, out, errOut)
	}

	return 0
}

// demoRoundTrip builds one primary block (no canonical blocks), encodes a
// payload into its chunk list, stores the reassembled bytes, and reads them
// back, exercising the pool, the bpwire chunk codec, and the store in one
// pass.
func demoRoundTrip(pool *bpblock.Pool, mgr *bpstore.Manager, h bpstore.Handle, log zerolog.Logger) error {
	pr, err := bpblock.MakePrimaryBlock(pool)
	if err != nil {
		return fmt.Errorf("make primary block: %w", err)
	}
	pr.Logical().DestEID = "ipn:2.1"
	pr.Logical().SourceEID = "ipn:1.1"

	payload := []byte("hello dtn")
	if _, err := bpwire.EncodeChunks(pool, pr.ChunkList(), payload); err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}

	encoded, err := bpwire.DecodeChunks(pr.ChunkList())
	if err != nil {
		return fmt.Errorf("decode chunks: %w", err)
	}

	sid, err := mgr.Enqueue(h, encoded)
	if err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	obj, err := mgr.Dequeue(h, -1)
	if err != nil {
		return fmt.Errorf("dequeue: %w", err)
	}
	if err := mgr.Release(h, obj.SID); err != nil {
		return fmt.Errorf("release: %w", err)
	}

	log.Info().Uint64("sid", uint64(sid)).Str("data", string(obj.Data)).Msg("round trip complete")

	return nil
}

func runREPL(mgr *bpstore.Manager, h bpstore.Handle, out, errOut *os.File) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Fprintln(out, "bpnode interactive shell — commands: count, quit")

	for {
		input, err := line.Prompt("bpnode> ")
		if err != nil {
			return 0
		}
		line.AppendHistory(input)

		switch input {
		case "count":
			n, err := mgr.GetCount(h)
			if err != nil {
				fmt.Fprintln(errOut, "error:", err)
				continue
			}
			fmt.Fprintln(out, n)
		case "quit", "exit":
			return 0
		default:
			fmt.Fprintln(errOut, "unknown command:", input)
		}
	}
}
