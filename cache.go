package main

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// reportService serves seed reports from a shared generator, remembering the
// most recent ones. Safe for concurrent use.
type reportService struct {
	mu      sync.Mutex
	gen     *Generator
	reports *lru.Cache[uint32, *SeedReport]
}

func newReportService(gen *Generator, size int) (*reportService, error) {
	c, err := lru.New[uint32, *SeedReport](size)
	if err != nil {
		return nil, fmt.Errorf("report cache: %w", err)
	}
	return &reportService{gen: gen, reports: c}, nil
}

// newServiceFromEnv loads and validates the environment config, then the
// chunk data it names.
func newServiceFromEnv(cacheSize int) (Config, *reportService, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	catalog, err := LoadCatalog(cfg.ChunkDataPath)
	if err != nil {
		return Config{}, nil, err
	}
	svc, err := newReportService(NewGenerator(catalog), cacheSize)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, svc, nil
}

// Report returns the report of seed, generating it on a cache miss.
func (s *reportService) Report(seed uint32) (*SeedReport, error) {
	if rep, ok := s.reports.Get(seed); ok {
		return rep, nil
	}
	s.mu.Lock()
	rep, err := s.gen.Report(seed)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.reports.Add(seed, rep)
	return rep, nil
}

// EvaluateSeed lets a reportService drive a Searcher. Cached reports answer
// directly; misses are evaluated without building a report.
func (s *reportService) EvaluateSeed(seed uint32) (float32, error) {
	if rep, ok := s.reports.Peek(seed); ok {
		return rep.AnyPercent, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.EvaluateSeed(seed)
}
