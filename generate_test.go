package main

import (
	"cmp"
	"errors"
	"slices"
	"testing"
)

// syntheticCatalog builds a catalog where every par time is a multiple of
// 0.25, so sums are exact whatever the order. Tiers 1-4 hold eight chunks
// each, tiers 8 and 9 two, tiers 5-7 none.
func syntheticCatalog() *Catalog {
	cat := &Catalog{}
	for ch := 0; ch < numChapters; ch++ {
		for lv := 0; lv < levelsPerChapter; lv++ {
			pool := &LevelPool{}
			for tier := 1; tier <= specialTiers; tier++ {
				for k := 0; k < 8; k++ {
					pool.Add(Chunk{
						ID:          ch*1000 + lv*100 + tier*10 + k,
						Tier:        tier,
						ParTime:     float32(tier) + 0.25*float32(k) + 0.5*float32(lv),
						HasWarpzone: (tier == 1 && k == 0) || (tier == 2 && k == 3),
						HasPacifier: (tier == 1 && k == 1) || (tier == 2 && k == 3),
					})
				}
			}
			for _, tier := range []int{8, 9} {
				for k := 0; k < 2; k++ {
					pool.Add(Chunk{
						ID:      ch*1000 + lv*100 + tier*10 + k,
						Tier:    tier,
						ParTime: 10 + float32(k) + float32(ch),
					})
				}
			}
			cat.Levels[ch][lv] = pool
		}
	}
	return cat
}

// lowTierPool has only tiers 1-4, eight chunks each.
func lowTierPool() *LevelPool {
	pool := &LevelPool{}
	for tier := 1; tier <= specialTiers; tier++ {
		for k := 0; k < 8; k++ {
			pool.Add(Chunk{
				ID:          tier*10 + k,
				Tier:        tier,
				ParTime:     float32(tier) + 0.25*float32(k),
				HasWarpzone: tier == 1 && k == 0,
				HasPacifier: tier == 1 && k == 1,
			})
		}
	}
	return pool
}

func pickCounts(g *Generator) [numTiers]int {
	var n [numTiers]int
	for t := range g.picks {
		n[t] = g.picks[t].n
	}
	return n
}

func TestLevelSeedWraps(t *testing.T) {
	tests := []struct {
		seed           uint32
		chapter, level int
		want           uint32
	}{
		{1, 0, 0, 2},
		{10, 2, 3, 34},
		{0xffffffff, 4, 5, 1},
		{0x80000000, 1, 0, 1},
	}
	for _, tt := range tests {
		if got := levelSeed(tt.seed, tt.chapter, tt.level); got != tt.want {
			t.Errorf("levelSeed(%#x, %d, %d) = %d, want %d", tt.seed, tt.chapter, tt.level, got, tt.want)
		}
	}
}

func TestChapterTime(t *testing.T) {
	tests := []struct {
		times [levelsPerChapter]float32
		want  float32
	}{
		{[levelsPerChapter]float32{10, 20, 5, 8, 30, 1}, 24},
		{[levelsPerChapter]float32{1, 1, 1, 1, 1, 1}, 4},
		{[levelsPerChapter]float32{6, 5, 4, 3, 2, 1}, 10},
	}
	for _, tt := range tests {
		in := tt.times
		if got := chapterTime(in); got != tt.want {
			t.Errorf("chapterTime(%v) = %v, want %v", tt.times, got, tt.want)
		}
		if in != tt.times {
			t.Errorf("chapterTime modified its input")
		}
	}
}

func TestGenerateStructure(t *testing.T) {
	g := NewGenerator(syntheticCatalog())
	g.generateStructure(1)

	want := [numChapters]ChapterStructure{
		{3, [6]int{4, 9, 11, 10, 5, 7}},
		{4, [6]int{2, 9, 0, 7, 8, 10}},
		{7, [6]int{5, 10, 11, 6, 9, 1}},
		{5, [6]int{10, 7, 11, 9, 1, 8}},
		{10, [6]int{3, 11, 4, 2, 6, 5}},
	}
	if g.structure != want {
		t.Fatalf("structure = %v, want %v", g.structure, want)
	}
}

func TestGenerateStructureInvariants(t *testing.T) {
	g := NewGenerator(syntheticCatalog())
	for seed := uint32(0); seed < 2000; seed++ {
		g.generateStructure(seed * 2654435761)
		for ch, s := range g.structure {
			seen := map[int]bool{s.Warpzone: true}
			for _, p := range s.Pacifiers {
				if seen[p] {
					t.Fatalf("seed %d chapter %d: level %d used twice in %v", seed, ch, p, s)
				}
				seen[p] = true
			}
			for l := range seen {
				if l < 0 || l > 11 || (ch == 0 && l < 3) {
					t.Fatalf("seed %d chapter %d: level %d not a candidate", seed, ch, l)
				}
			}
		}
	}
}

func TestGenerateLevel(t *testing.T) {
	pool := syntheticCatalog().Pool(0, 0)
	tests := []struct {
		name               string
		warpzone, pacifier bool
		want               float32
		counts             [numTiers]int
	}{
		{"plain", false, false, 37.25, [numTiers]int{3, 0, 1, 1, 0, 0, 0, 1, 1}},
		{"warpzone", true, false, 33.0, [numTiers]int{4, 1, 0, 0, 0, 0, 0, 1, 1}},
		{"pacifier", false, true, 33.0, [numTiers]int{4, 1, 0, 0, 0, 0, 0, 1, 1}},
		{"both", true, true, 34.0, [numTiers]int{4, 0, 0, 1, 0, 0, 0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(nil)
			got, err := g.generateLevel(pool, levelSeed(1, 0, 0), tt.warpzone, tt.pacifier)
			if err != nil {
				t.Fatalf("generateLevel: %v", err)
			}
			if got != tt.want {
				t.Errorf("par time = %v, want %v", got, tt.want)
			}
			if c := pickCounts(g); c != tt.counts {
				t.Errorf("picks per tier = %v, want %v", c, tt.counts)
			}
		})
	}
}

func TestGenerateLevelEmptyFixedTiers(t *testing.T) {
	// Without tier 8/9 chunks those slots fall back to tiers 1-4 like the
	// untiered ones, so seven chunks still come from the low tiers.
	g := NewGenerator(nil)
	got, err := g.generateLevel(lowTierPool(), 7, false, false)
	if err != nil {
		t.Fatalf("generateLevel: %v", err)
	}
	if got != 26.75 {
		t.Errorf("par time = %v, want 26.75", got)
	}
	if c := pickCounts(g); c != [numTiers]int{3, 0, 2, 2} {
		t.Errorf("picks per tier = %v", c)
	}

	got, err = g.generateLevel(lowTierPool(), 7, true, true)
	if err != nil {
		t.Fatalf("generateLevel with specials: %v", err)
	}
	if got != 22.75 {
		t.Errorf("par time with specials = %v, want 22.75", got)
	}
	if c := pickCounts(g); c != [numTiers]int{4, 1, 0, 2} {
		t.Errorf("picks per tier with specials = %v", c)
	}

	pool := lowTierPool()
	pool.Add(Chunk{ID: 91, Tier: 9, ParTime: 20})
	got, err = g.generateLevel(pool, 7, false, false)
	if err != nil {
		t.Fatalf("generateLevel with tier 9: %v", err)
	}
	if got != 44.25 {
		t.Errorf("par time with tier 9 = %v, want 44.25", got)
	}
	if c := pickCounts(g); c != [numTiers]int{2, 0, 2, 2, 0, 0, 0, 0, 1} {
		t.Errorf("picks per tier with tier 9 = %v", c)
	}
}

func TestGenerateLevelSpecialsAlwaysCounted(t *testing.T) {
	// The warp-zone chunk is recorded before the slot loop, so tier 1 holds
	// at least one pick whatever the rolls decide.
	pool := syntheticCatalog().Pool(2, 3)
	g := NewGenerator(nil)
	for seed := uint32(0); seed < 500; seed++ {
		if _, err := g.generateLevel(pool, seed, true, false); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		c := pickCounts(g)
		if c[0]+c[1] == 0 {
			t.Fatalf("seed %d: no low tier pick with warp-zone pending", seed)
		}
		total := 0
		for _, n := range c {
			total += n
		}
		if total < len(difficultySlots) || total > len(difficultySlots)+1 {
			t.Fatalf("seed %d: %d picks", seed, total)
		}
	}
}

// replayLayout regenerates a level by deleting every drawn chunk from a copy
// of its tier and lays the chunks out slot by slot, tiers 8 and 9 first.
func replayLayout(pool *LevelPool, seed uint32, warpzone, pacifier bool) []Chunk {
	var r Rand
	r.Seed(seed)
	var remaining [numTiers][]Chunk
	for t := range pool.Tiers {
		remaining[t] = slices.Clone(pool.Tiers[t])
	}
	take := func(ref chunkRef) Chunk {
		c := remaining[ref.tier][ref.pos]
		remaining[ref.tier] = slices.Delete(remaining[ref.tier], ref.pos, ref.pos+1)
		return c
	}

	var warp, pac Chunk
	if warpzone {
		warp = take(pool.Warpzones[r.Int(len(pool.Warpzones)-1)])
	}
	if pacifier {
		pac = take(pool.Pacifiers[r.Int(len(pool.Pacifiers)-1)])
	}

	var out []Chunk
	p := specialProbabilityIncrement
	for _, tier := range difficultySlots {
		fixed := tier != 0 && len(pool.Tiers[tier-1]) > 0
		if fixed {
			out = append(out, pool.Tiers[tier-1][r.Int(len(pool.Tiers[tier-1])-1)])
		}
		useWarp := warpzone && r.Bool(p)
		usePac := pacifier && r.Bool(p)
		if fixed {
			continue
		}
		p = min(p+specialProbabilityIncrement, 1)
		switch {
		case useWarp:
			out = append(out, warp)
			warpzone = false
		case usePac:
			out = append(out, pac)
			pacifier = false
		default:
			t := r.Int(specialTiers - 1)
			out = append(out, take(chunkRef{tier: t, pos: r.Int(len(remaining[t]) - 1)}))
		}
	}
	if warpzone {
		out = append(out, warp)
	}
	if pacifier {
		out = append(out, pac)
	}

	rank := func(c Chunk) int {
		if c.Tier >= 8 {
			return c.Tier - 8
		}
		return c.Tier + 2
	}
	slices.SortStableFunc(out, func(a, b Chunk) int { return cmp.Compare(rank(a), rank(b)) })
	return out
}

func chunkIDs(chunks []Chunk) []int {
	ids := make([]int, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}

// tierFirstIDs lists the picks tier by tier in recording order, which puts
// special chunks ahead of the slot they replaced.
func tierFirstIDs(g *Generator, pool *LevelPool) []int {
	var ids []int
	for _, t := range []int{7, 8, 0, 1, 2, 3, 4, 5, 6} {
		for _, pos := range g.picks[t].positions() {
			ids = append(ids, pool.Tiers[t][pos].ID)
		}
	}
	return ids
}

func TestResolvedChunksSlotOrder(t *testing.T) {
	cat := syntheticCatalog()
	pools := []*LevelPool{cat.Pool(0, 0), cat.Pool(2, 3), cat.Pool(4, 5), lowTierPool()}
	g := NewGenerator(nil)
	reordered := 0
	for pi, pool := range pools {
		for seed := uint32(0); seed < 300; seed++ {
			for _, flags := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
				if _, err := g.generateLevel(pool, seed, flags[0], flags[1]); err != nil {
					t.Fatalf("pool %d seed %d: %v", pi, seed, err)
				}
				got := chunkIDs(g.resolvedChunks(pool))
				want := chunkIDs(replayLayout(pool, seed, flags[0], flags[1]))
				if !slices.Equal(got, want) {
					t.Fatalf("pool %d seed %d flags %v: layout %v, want %v", pi, seed, flags, got, want)
				}
				if !slices.Equal(got, tierFirstIDs(g, pool)) {
					reordered++
				}
			}
		}
	}
	if reordered == 0 {
		t.Error("no level placed a special chunk after a pick of its own tier")
	}
}

func TestLevelTimeSinglePrecision(t *testing.T) {
	pool := &LevelPool{}
	for _, tier := range []int{1, 2, 3, 4, 8, 9} {
		for k := 0; k < 8; k++ {
			pool.Add(Chunk{ID: tier*10 + k, Tier: tier, ParTime: 0.1})
		}
	}
	var want float32 = levelBaseTime
	for range difficultySlots {
		want += 0.1
	}
	got, err := NewGenerator(nil).generateLevel(pool, 5, false, false)
	if err != nil {
		t.Fatalf("generateLevel: %v", err)
	}
	if got != want {
		t.Errorf("par time = %v, want %v", got, want)
	}
}

func TestGenerateLevelPreconditions(t *testing.T) {
	pool := &LevelPool{}
	for k := 0; k < 8; k++ {
		pool.Add(Chunk{ID: k, Tier: 1, ParTime: 1})
	}

	g := NewGenerator(nil)
	if _, err := g.generateLevel(pool, 1, true, false); !errors.Is(err, ErrPrecondition) {
		t.Errorf("missing warp-zone chunk: err = %v, want ErrPrecondition", err)
	}
	if _, err := g.generateLevel(pool, 1, false, true); !errors.Is(err, ErrPrecondition) {
		t.Errorf("missing pacifier chunk: err = %v, want ErrPrecondition", err)
	}

	// Two chunks per tier cannot feed seven slots for long.
	tiny := &Catalog{}
	for ch := range tiny.Levels {
		for lv := range tiny.Levels[ch] {
			p := &LevelPool{}
			for tier := 1; tier <= numTiers; tier++ {
				for k := 0; k < 2; k++ {
					p.Add(Chunk{ID: tier*10 + k, Tier: tier, ParTime: float32(tier), HasWarpzone: tier == 1 && k == 0, HasPacifier: tier == 1 && k == 1})
				}
			}
			tiny.Levels[ch][lv] = p
		}
	}
	if _, err := NewGenerator(tiny).EvaluateSeed(1); !errors.Is(err, ErrPrecondition) {
		t.Errorf("exhausted tiers: err = %v, want ErrPrecondition", err)
	}
}

func TestEvaluateSeedGolden(t *testing.T) {
	g := NewGenerator(syntheticCatalog())
	tests := []struct {
		seed uint32
		want float32
	}{
		{0x00000000, 938.0},
		{0x00000001, 963.5},
		{0x00000002, 959.5},
		{0x0000002a, 935.25},
		{0x00001234, 961.5},
		{0x7fffffff, 952.25},
		{0xdeadbeef, 954.0},
		{0xffffffff, 963.5},
	}
	for _, tt := range tests {
		got, err := g.EvaluateSeed(tt.seed)
		if err != nil {
			t.Fatalf("seed %#x: %v", tt.seed, err)
		}
		if got != tt.want {
			t.Errorf("seed %#x: got %v, want %v", tt.seed, got, tt.want)
		}
	}
}

func TestEvaluateSeedDeterministic(t *testing.T) {
	cat := syntheticCatalog()
	a, b := NewGenerator(cat), NewGenerator(cat)
	for seed := uint32(100); seed < 300; seed++ {
		x, err := a.EvaluateSeed(seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		// Interleave another seed so reuse of scratch state would show.
		if _, err := a.EvaluateSeed(seed + 7); err != nil {
			t.Fatalf("seed %d: %v", seed+7, err)
		}
		y, err := b.EvaluateSeed(seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		z, _ := a.EvaluateSeed(seed)
		if x != y || x != z {
			t.Fatalf("seed %d: %v, %v, %v", seed, x, y, z)
		}
	}
}

func TestEvaluateSeedNoAllocs(t *testing.T) {
	g := NewGenerator(syntheticCatalog())
	allocs := testing.AllocsPerRun(20, func() {
		g.EvaluateSeed(0x1234)
	})
	if allocs != 0 {
		t.Errorf("EvaluateSeed allocated %v times per run", allocs)
	}
}

func TestReportMatchesEvaluate(t *testing.T) {
	g := NewGenerator(syntheticCatalog())
	rep, err := g.Report(1)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.AnyPercent != 963.5 {
		t.Errorf("any%% = %v, want 963.5", rep.AnyPercent)
	}

	var sumChapters float32
	for ci, cr := range rep.Chapters {
		sumChapters += cr.AnyPercent
		if cr.AnyPercent > cr.Full {
			t.Errorf("chapter %d: any%% %v above full %v", ci+1, cr.AnyPercent, cr.Full)
		}
		for li, lr := range cr.Levels {
			sum := levelBaseTime
			for _, c := range lr.Chunks {
				sum += c.ParTime
			}
			if sum != lr.ParTime {
				t.Errorf("level %d-%d: chunks sum to %v, par time %v", ci+1, li+1, sum, lr.ParTime)
			}
			if lr.Warpzone != (cr.Structure.Warpzone == li) {
				t.Errorf("level %d-%d: warp-zone flag mismatch", ci+1, li+1)
			}
			if len(lr.Chunks) > 0 && lr.Chunks[0].Tier != 8 {
				t.Errorf("level %d-%d: first chunk tier %d, want 8", ci+1, li+1, lr.Chunks[0].Tier)
			}
		}
	}
	if sumChapters != rep.AnyPercent {
		t.Errorf("chapters sum to %v, report says %v", sumChapters, rep.AnyPercent)
	}
}
