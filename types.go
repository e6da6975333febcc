package main

import "fmt"

const (
	numChapters      = 5
	levelsPerChapter = 6
	numTiers         = 9
	// Only tiers 1..specialTiers hold warp-zone/pacifier chunks and feed the
	// random fallback slots.
	specialTiers = 4

	pacifiersPerChapter = 6
	// One warp-zone draw plus the pacifier draws.
	structureDraws = 1 + pacifiersPerChapter

	// Upper bound on picks landing in a single tier during one level: the
	// warp-zone chunk, the pacifier chunk and every difficulty slot.
	maxTierPicks = 2 + len(difficultySlots)

	levelBaseTime float32 = 3.0
)

// difficultySlots lists the required tier of each chunk slot of a level,
// 1-based; 0 means any of the first specialTiers tiers.
var difficultySlots = [7]int{8, 9, 0, 0, 0, 0, 0}

// specialProbabilityIncrement is float32 because the game ramps the
// substitution probability in single precision.
const specialProbabilityIncrement float32 = 1.0 / 6

var (
	// Chapter 0 never places a warp-zone or pacifier in its first three levels.
	specialLevelsFirst = []int{3, 4, 5, 6, 7, 8, 9, 10, 11}
	specialLevels      = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
)

func specialLevelCandidates(chapter int) []int {
	if chapter == 0 {
		return specialLevelsFirst
	}
	return specialLevels
}

// Chunk is one piece of level content.
type Chunk struct {
	ID          int     `json:"id"`
	Tier        int     `json:"tier"` // 1-based difficulty tier
	ParTime     float32 `json:"parTime"`
	HasWarpzone bool    `json:"warpzone,omitempty"`
	HasPacifier bool    `json:"pacifier,omitempty"`
}

// chunkRef addresses a chunk inside a LevelPool: 0-based tier, position within it.
type chunkRef struct {
	tier int
	pos  int
}

// LevelPool holds the chunks one level draws from.
type LevelPool struct {
	Tiers     [numTiers][]Chunk
	Warpzones []chunkRef // warp-zone capable chunks of tiers 1..specialTiers
	Pacifiers []chunkRef // pacifier capable chunks of tiers 1..specialTiers
}

// Add appends c to its tier bucket and indexes it as a special candidate.
func (p *LevelPool) Add(c Chunk) error {
	if c.Tier < 1 || c.Tier > numTiers {
		return fmt.Errorf("chunk %d: tier %d out of range 1..%d", c.ID, c.Tier, numTiers)
	}
	t := c.Tier - 1
	p.Tiers[t] = append(p.Tiers[t], c)
	if c.Tier <= specialTiers {
		ref := chunkRef{tier: t, pos: len(p.Tiers[t]) - 1}
		if c.HasWarpzone {
			p.Warpzones = append(p.Warpzones, ref)
		}
		if c.HasPacifier {
			p.Pacifiers = append(p.Pacifiers, ref)
		}
	}
	return nil
}

// NumChunks returns the total number of chunks across all tiers.
func (p *LevelPool) NumChunks() int {
	n := 0
	for t := range p.Tiers {
		n += len(p.Tiers[t])
	}
	return n
}

// Catalog is the read-only chunk data of every light level, indexed
// [chapter][level], both 0-based.
type Catalog struct {
	Levels [numChapters][levelsPerChapter]*LevelPool
}

// NumChunks returns the number of chunks across every level.
func (c *Catalog) NumChunks() int {
	n := 0
	for ch := range c.Levels {
		for _, pool := range c.Levels[ch] {
			n += pool.NumChunks()
		}
	}
	return n
}

// Pool returns the pool of the given level.
func (c *Catalog) Pool(chapter, level int) *LevelPool {
	return c.Levels[chapter][level]
}

// validate reports the first missing level pool.
func (c *Catalog) validate() error {
	for ch := range c.Levels {
		for lv := range c.Levels[ch] {
			if c.Levels[ch][lv] == nil {
				return fmt.Errorf("missing chunk data for level %d-%d", ch+1, lv+1)
			}
		}
	}
	return nil
}

// ChapterStructure records where a chapter's special levels are. Level
// numbers index the chapter's twelve slots (0-5 light, 6-11 dark).
type ChapterStructure struct {
	Warpzone  int                      `json:"warpzone"`
	Pacifiers [pacifiersPerChapter]int `json:"pacifiers"`
}

// IsPacifier reports whether level hosts a pacifier.
func (s *ChapterStructure) IsPacifier(level int) bool {
	for _, p := range s.Pacifiers {
		if p == level {
			return true
		}
	}
	return false
}

// SeedResult pairs a seed with its estimated total time.
type SeedResult struct {
	Seed uint32  `json:"seed"`
	Time float32 `json:"time"`
}

// LevelReport describes one generated level.
type LevelReport struct {
	ParTime  float32 `json:"parTime"`
	Warpzone bool    `json:"warpzone,omitempty"`
	Pacifier bool    `json:"pacifier,omitempty"`
	Chunks   []Chunk `json:"chunks"`
}

// ChapterReport describes one chapter of a seed.
type ChapterReport struct {
	Structure  ChapterStructure              `json:"structure"`
	Levels     [levelsPerChapter]LevelReport `json:"levels"`
	AnyPercent float32                       `json:"anyPercent"` // best 4 of 6
	Full       float32                       `json:"full"`       // all 6 levels
}

// SeedReport is the full breakdown of a seed.
type SeedReport struct {
	Seed       uint32                     `json:"seed"`
	Chapters   [numChapters]ChapterReport `json:"chapters"`
	AnyPercent float32                    `json:"anyPercent"`
	Full       float32                    `json:"full"`
}
