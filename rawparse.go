package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/gjson"
)

// JSON catalog layout:
//
//	{"chapters": [{"levels": [{"chunks": [
//	    {"tier": 1, "id": 7, "parTime": 4.5, "warpzone": true, "pacifier": false}
//	]}]}]}
//
// Chapters and levels are positional: five chapters of six light levels.

func loadJSONCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cat, err := parseJSONCatalog(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

func parseJSONCatalog(dataJSON string) (*Catalog, error) {
	if !gjson.Valid(dataJSON) {
		return nil, errors.New("invalid JSON")
	}
	chapters := gjson.Get(dataJSON, "chapters").Array()
	if len(chapters) != numChapters {
		return nil, fmt.Errorf("got %d chapters, want %d", len(chapters), numChapters)
	}

	cat := &Catalog{}
	for ch, chv := range chapters {
		levels := chv.Get("levels").Array()
		if len(levels) != levelsPerChapter {
			return nil, fmt.Errorf("chapter %d: got %d levels, want %d", ch+1, len(levels), levelsPerChapter)
		}
		for lv, lvv := range levels {
			pool, err := parseJSONLevel(lvv)
			if err != nil {
				return nil, fmt.Errorf("level %d-%d: %w", ch+1, lv+1, err)
			}
			cat.Levels[ch][lv] = pool
		}
	}
	return cat, nil
}

func parseJSONLevel(v gjson.Result) (*LevelPool, error) {
	pool := &LevelPool{}
	var perr error
	i := 0
	v.Get("chunks").ForEach(func(_, e gjson.Result) bool {
		c, err := parseJSONChunk(e)
		if err == nil {
			err = pool.Add(c)
		}
		if err != nil {
			perr = fmt.Errorf("chunk #%d: %w", i, err)
			return false
		}
		i++
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return pool, nil
}

func parseJSONChunk(e gjson.Result) (Chunk, error) {
	for _, key := range []string{"tier", "id", "parTime"} {
		if !e.Get(key).Exists() {
			return Chunk{}, fmt.Errorf("missing %q", key)
		}
	}
	// Parsed from the literal so single-precision rounding matches the CSV path.
	par, err := strconv.ParseFloat(e.Get("parTime").Raw, 32)
	if err != nil {
		return Chunk{}, fmt.Errorf("parTime: %w", err)
	}
	return Chunk{
		ID:          int(e.Get("id").Int()),
		Tier:        int(e.Get("tier").Int()),
		ParTime:     float32(par),
		HasWarpzone: e.Get("warpzone").Bool(),
		HasPacifier: e.Get("pacifier").Bool(),
	}, nil
}
