package main

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrPrecondition is returned when the loaded chunk data cannot satisfy a draw
// the game's algorithm requires, e.g. a warp-zone level without any
// warp-zone chunk.
var ErrPrecondition = errors.New("generation precondition violated")

// scoredLevels is how many of a chapter's levels count toward its time.
const scoredLevels = 4

// tierPicks records the positions drawn from one tier during a level.
type tierPicks struct {
	idx [maxTierPicks]int
	n   int
}

func (p *tierPicks) push(pos int) {
	p.idx[p.n] = pos
	p.n++
}

func (p *tierPicks) positions() []int {
	return p.idx[:p.n]
}

// selection is the chunk chosen for a difficulty slot, if any.
type selection struct {
	ref chunkRef
	ok  bool
}

// pickRef names the n-th pick recorded in a tier.
type pickRef struct {
	tier int
	n    int
}

// Generator replays the game's level generation for a seed. It owns the
// random state and scratch buffers, so evaluating a seed does not allocate.
// A Generator is not safe for concurrent use.
type Generator struct {
	catalog *Catalog

	rng       Rand
	picks     [numTiers]tierPicks
	order     [maxTierPicks]pickRef // current level's picks in slot order
	nOrder    int
	special   [structureDraws]int
	structure [numChapters]ChapterStructure
}

// NewGenerator creates a generator over a loaded catalog.
func NewGenerator(catalog *Catalog) *Generator {
	return &Generator{catalog: catalog}
}

// levelSeed is the seed a level is generated from, with uint32 wraparound.
func levelSeed(seed uint32, chapter, level int) uint32 {
	return uint32(chapter+1)*seed + uint32(level+1)
}

// generateStructure picks the warp-zone level and the pacifier levels of
// every chapter. The random state is seeded once for all five chapters.
func (g *Generator) generateStructure(seed uint32) {
	g.rng.Seed(seed)
	for ch := range g.structure {
		candidates := specialLevelCandidates(ch)
		for j := range g.special {
			g.special[j] = g.rng.Int(len(candidates) - j - 1)
		}
		toRemovalSpace(g.special[:])

		s := &g.structure[ch]
		s.Warpzone = candidates[g.special[0]]
		for j := range s.Pacifiers {
			s.Pacifiers[j] = candidates[g.special[j+1]]
		}
	}
}

func (g *Generator) push(ref chunkRef) pickRef {
	p := pickRef{tier: ref.tier, n: g.picks[ref.tier].n}
	g.picks[ref.tier].push(ref.pos)
	return p
}

func (g *Generator) place(p pickRef) {
	g.order[g.nOrder] = p
	g.nOrder++
}

func (g *Generator) pickSpecial(candidates []chunkRef, kind string) (pickRef, error) {
	if len(candidates) == 0 {
		return pickRef{}, fmt.Errorf("%w: no %s chunk to place", ErrPrecondition, kind)
	}
	return g.push(candidates[g.rng.Int(len(candidates)-1)]), nil
}

// generateLevel draws the chunks of one level and returns its par time. The
// resolved picks stay in g.picks until the next level is generated.
func (g *Generator) generateLevel(pool *LevelPool, seed uint32, warpzone, pacifier bool) (float32, error) {
	g.rng.Seed(seed)
	for t := range g.picks {
		g.picks[t].n = 0
	}
	g.nOrder = 0

	// Special chunks are recorded up front; the slot loop below only decides
	// which slot they replace.
	var warpPick, pacifierPick pickRef
	var err error
	if warpzone {
		if warpPick, err = g.pickSpecial(pool.Warpzones, "warp-zone"); err != nil {
			return 0, err
		}
	}
	if pacifier {
		if pacifierPick, err = g.pickSpecial(pool.Pacifiers, "pacifier"); err != nil {
			return 0, err
		}
	}

	p := specialProbabilityIncrement
	for _, tier := range difficultySlots {
		var sel selection
		if tier != 0 && len(pool.Tiers[tier-1]) > 0 {
			// Fixed tiers draw over the whole bucket; repeats are allowed.
			pos := g.rng.Int(len(pool.Tiers[tier-1]) - 1)
			sel = selection{ref: chunkRef{tier: tier - 1, pos: pos}, ok: true}
		}

		// Both rolls consume the stream on every slot while their chunk is
		// pending, whether or not the slot needs a substitute.
		useWarpzone := warpzone && g.rng.Bool(p)
		usePacifier := pacifier && g.rng.Bool(p)

		if !sel.ok {
			p = min(p+specialProbabilityIncrement, 1)
			switch {
			case useWarpzone:
				warpzone = false
				g.place(warpPick)
			case usePacifier:
				pacifier = false
				g.place(pacifierPick)
			default:
				t := g.rng.Int(specialTiers - 1)
				bound := len(pool.Tiers[t]) - g.picks[t].n - 1
				if bound < 0 {
					return 0, fmt.Errorf("%w: tier %d exhausted after %d picks", ErrPrecondition, t+1, g.picks[t].n)
				}
				sel = selection{ref: chunkRef{tier: t, pos: g.rng.Int(bound)}, ok: true}
			}
		}

		if sel.ok {
			g.place(g.push(sel.ref))
		}
	}
	// A special chunk that never got a slot still counts toward the par time.
	if warpzone {
		g.place(warpPick)
	}
	if pacifier {
		g.place(pacifierPick)
	}
	return g.resolve(pool)
}

// resolve maps the recorded picks to chunk positions and sums their par times.
func (g *Generator) resolve(pool *LevelPool) (float32, error) {
	total := levelBaseTime
	for t := range g.picks {
		positions := g.picks[t].positions()
		toRemovalSpace(positions)
		chunks := pool.Tiers[t]
		for _, pos := range positions {
			if pos >= len(chunks) {
				return 0, fmt.Errorf("%w: tier %d position %d past its %d chunks", ErrPrecondition, t+1, pos, len(chunks))
			}
			total += chunks[pos].ParTime
		}
	}
	return total, nil
}

// resolvedChunks lists the chunks of the last generated level the way the
// game lays them out: slot order, then stably moved so tiers 8 and 9 lead
// and tiers 1-7 follow in increasing order.
func (g *Generator) resolvedChunks(pool *LevelPool) []Chunk {
	out := make([]Chunk, 0, g.nOrder)
	for _, p := range g.order[:g.nOrder] {
		out = append(out, pool.Tiers[p.tier][g.picks[p.tier].idx[p.n]])
	}
	slices.SortStableFunc(out, func(a, b Chunk) int {
		return cmp.Compare(layoutRank(a.Tier), layoutRank(b.Tier))
	})
	return out
}

func layoutRank(tier int) int {
	if tier < 8 {
		return tier + 10
	}
	return tier
}

// chapterTime sums the scoredLevels fastest level times.
func chapterTime(times [levelsPerChapter]float32) float32 {
	slices.Sort(times[:])
	var total float32
	for _, t := range times[:scoredLevels] {
		total += t
	}
	return total
}

// EvaluateSeed returns the estimated total time of a seed: the sum over all
// chapters of the chapter's best four level par times.
func (g *Generator) EvaluateSeed(seed uint32) (float32, error) {
	return g.evaluate(seed, nil)
}

// Report evaluates a seed and records every chapter and level.
func (g *Generator) Report(seed uint32) (*SeedReport, error) {
	rep := &SeedReport{Seed: seed}
	if _, err := g.evaluate(seed, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (g *Generator) evaluate(seed uint32, rep *SeedReport) (float32, error) {
	g.generateStructure(seed)

	var total float32
	var times [levelsPerChapter]float32
	for ch := range g.structure {
		s := &g.structure[ch]
		for lv := range times {
			pool := g.catalog.Pool(ch, lv)
			warpzone, pacifier := s.Warpzone == lv, s.IsPacifier(lv)
			t, err := g.generateLevel(pool, levelSeed(seed, ch, lv), warpzone, pacifier)
			if err != nil {
				return 0, fmt.Errorf("seed %s level %d-%d: %w", formatSeed(seed), ch+1, lv+1, err)
			}
			times[lv] = t
			if rep != nil {
				rep.Chapters[ch].Levels[lv] = LevelReport{
					ParTime:  t,
					Warpzone: warpzone,
					Pacifier: pacifier,
					Chunks:   g.resolvedChunks(pool),
				}
			}
		}

		score := chapterTime(times)
		total += score
		if rep != nil {
			cr := &rep.Chapters[ch]
			cr.Structure = *s
			cr.AnyPercent = score
			for _, t := range times {
				cr.Full += t
			}
			rep.Full += cr.Full
		}
	}
	if rep != nil {
		rep.AnyPercent = total
	}
	return total, nil
}
