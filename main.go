//go:build !lambda

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
)

const usage = `Usage:
  seed-cruncher [flags] <first_seed> <last_seed>
  seed-cruncher -report [flags] <seed>
  seed-cruncher -save <slot> -chapter <n> -o <out> [flags] <seed>

Seeds are hex, with or without the 0x prefix. The range is [first_seed, last_seed).

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("seed-cruncher", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.ChunkDataPath, "data", cfg.ChunkDataPath, "Chunk data directory or JSON catalog")
	fs.IntVar(&cfg.KeepBest, "keep", cfg.KeepBest, "Number of best seeds to keep")
	fs.DurationVar(&cfg.ReportInterval, "interval", cfg.ReportInterval, "Minimum time between progress reports")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every evaluated seed")
	report := fs.Bool("report", false, "Print the full breakdown of a single seed")
	jsonOut := fs.Bool("json", false, "Print the seed report as JSON")
	saveSlot := fs.String("save", "", "Save slot to patch with the seed")
	chapter := fs.Int("chapter", 1, "Chapter (1-5) the patched save starts at")
	saveOut := fs.String("o", "SAVESLOT", "Output path of the patched save")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	logger := newLogger(stderr, cfg.Verbose)
	single := *report || *saveSlot != ""
	rest := fs.Args()
	if (single && len(rest) != 1) || (!single && len(rest) != 2) {
		fs.Usage()
		return 2
	}

	seeds := make([]uint64, len(rest))
	for i, a := range rest {
		if seeds[i], err = parseSeed(a); err != nil {
			logger.Error("bad argument", "err", err)
			return 2
		}
	}

	catalog, err := LoadCatalog(cfg.ChunkDataPath)
	if err != nil {
		logger.Error("load chunk data", "err", err)
		return 1
	}
	logger.Info("chunk data loaded", "path", cfg.ChunkDataPath, "chunks", catalog.NumChunks())
	gen := NewGenerator(catalog)

	switch {
	case *saveSlot != "":
		if seeds[0] > 0xffffffff {
			logger.Error("seed out of range", "seed", rest[0])
			return 2
		}
		if err := writeSeedSave(gen, *saveSlot, *saveOut, uint32(seeds[0]), *chapter-1); err != nil {
			logger.Error("patch save", "err", err)
			return 1
		}
		logger.Info("save written", "path", *saveOut, "seed", formatSeed(uint32(seeds[0])), "chapter", *chapter)
		return 0

	case *report:
		if seeds[0] > 0xffffffff {
			logger.Error("seed out of range", "seed", rest[0])
			return 2
		}
		rep, err := gen.Report(uint32(seeds[0]))
		if err != nil {
			logger.Error("generate", "err", err)
			return 1
		}
		if *jsonOut {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				logger.Error("write report", "err", err)
				return 1
			}
		} else if _, err := fmt.Fprint(stdout, FormatReport(rep)); err != nil {
			logger.Error("write report", "err", err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := NewSearcher(gen, cfg, logger, stdout)
	if _, err := s.Run(ctx, seeds[0], seeds[1]); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		logger.Error("search failed", "err", err)
		return 1
	}
	return 0
}
