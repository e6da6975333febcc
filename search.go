package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// ── Leaderboard ─────────────────────────────────────────────────────

// Leaderboard keeps the fastest seeds seen so far and the slowest one.
type Leaderboard struct {
	keep  int
	best  []SeedResult // ascending by time
	worst SeedResult
	seen  uint64
}

// NewLeaderboard creates a leaderboard keeping at most keep seeds, and at
// least one.
func NewLeaderboard(keep int) *Leaderboard {
	keep = max(keep, 1)
	return &Leaderboard{keep: keep, best: make([]SeedResult, 0, keep+1)}
}

// Add records a result. Among equal times the earlier result ranks first.
func (l *Leaderboard) Add(r SeedResult) {
	if l.seen == 0 || r.Time > l.worst.Time {
		l.worst = r
	}
	l.seen++

	if len(l.best) == l.keep && r.Time >= l.best[len(l.best)-1].Time {
		return
	}
	i := sort.Search(len(l.best), func(i int) bool { return l.best[i].Time > r.Time })
	l.best = append(l.best, SeedResult{})
	copy(l.best[i+1:], l.best[i:])
	l.best[i] = r
	if len(l.best) > l.keep {
		l.best = l.best[:l.keep]
	}
}

// Best returns the kept seeds, fastest first.
func (l *Leaderboard) Best() []SeedResult { return l.best }

// Worst returns the slowest seed seen and whether any seed was added.
func (l *Leaderboard) Worst() (SeedResult, bool) { return l.worst, l.seen > 0 }

// Len returns the number of seeds added.
func (l *Leaderboard) Len() uint64 { return l.seen }

// ── Searcher ────────────────────────────────────────────────────────

// seedEvaluator is the part of Generator the search loop needs.
type seedEvaluator interface {
	EvaluateSeed(seed uint32) (float32, error)
}

// Searcher evaluates a range of seeds one after another.
type Searcher struct {
	eval   seedEvaluator
	cfg    Config
	log    *log.Logger
	out    io.Writer
	now    func() time.Time
	board  *Leaderboard
	report time.Time
}

// NewSearcher creates a searcher writing leaderboards to out.
func NewSearcher(eval seedEvaluator, cfg Config, logger *log.Logger, out io.Writer) *Searcher {
	return &Searcher{
		eval: eval,
		cfg:  cfg,
		log:  logger,
		out:  out,
		now:  time.Now,
	}
}

// Run evaluates seeds in [first, last). It stops between seeds when ctx is
// done and returns the leaderboard built so far together with ctx.Err().
func (s *Searcher) Run(ctx context.Context, first, last uint64) (*Leaderboard, error) {
	s.board = NewLeaderboard(s.cfg.KeepBest)
	if last <= first {
		return s.board, fmt.Errorf("empty seed range [%#x, %#x)", first, last)
	}

	start := s.now()
	s.report = start
	s.log.Info("crunching seeds", "from", formatSeed(uint32(first)), "to", formatSeed(uint32(last-1)))

	for seed := first; seed < last; seed++ {
		if err := ctx.Err(); err != nil {
			s.log.Warn("search interrupted", "seed", formatSeed(uint32(seed)))
			s.printProgress(start, first, last, seed-1)
			return s.board, err
		}
		t, err := s.eval.EvaluateSeed(uint32(seed))
		if err != nil {
			return s.board, err
		}
		s.board.Add(SeedResult{Seed: uint32(seed), Time: t})
		s.log.Debug("evaluated", "seed", formatSeed(uint32(seed)), "time", t)

		if now := s.now(); now.Sub(s.report) >= s.cfg.ReportInterval || seed == last-1 {
			s.report = now
			s.printProgress(start, first, last, seed)
		}
	}
	s.log.Info("done", "total time", formatDuration(s.now().Sub(start)))
	return s.board, nil
}

// printProgress writes the leaderboard and logs how far the search is.
// current is the last evaluated seed.
func (s *Searcher) printProgress(start time.Time, first, last, current uint64) {
	if s.board.Len() == 0 {
		return
	}
	fmt.Fprintf(s.out, "\ntop %d seeds:\n%s\n", s.board.keep, renderLeaderboard(s.board.Best()))
	if w, ok := s.board.Worst(); ok {
		fmt.Fprintf(s.out, "worst seed: %s  %.2f\n", formatSeed(w.Seed), w.Time)
	}

	done := current - first + 1
	processed := float64(done) / float64(last-first) * 100
	elapsed := s.now().Sub(start)
	remaining := time.Duration(0)
	if elapsed > 0 {
		perSeed := elapsed / time.Duration(done)
		remaining = perSeed * time.Duration(last-current-1)
	}
	s.log.Info("progress",
		"processed", fmt.Sprintf("%.3f%%", processed),
		"current", formatSeed(uint32(current)),
		"remaining", formatDuration(remaining),
	)
}
