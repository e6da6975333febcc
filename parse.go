package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Columns of a level table: tier, two unused columns, chunk id, par time,
// warp-zone flag, pacifier flag.
const (
	colTier = iota
	_
	_
	colChunkID
	colParTime
	colWarpzone
	colPacifier
	csvColumns
)

// LoadCatalog reads chunk data either from a directory holding one CSV table
// per light level (1-1.csv .. 5-6.csv) or from a single JSON catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	var cat *Catalog
	if info.IsDir() {
		cat, err = loadCSVDir(path)
	} else {
		cat, err = loadJSONCatalog(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cat.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

func levelFileName(chapter, level int) string {
	return fmt.Sprintf("%d-%d.csv", chapter+1, level+1)
}

func loadCSVDir(dir string) (*Catalog, error) {
	cat := &Catalog{}
	for ch := range cat.Levels {
		for lv := range cat.Levels[ch] {
			path := filepath.Join(dir, levelFileName(ch, lv))
			pool, err := loadLevelCSV(path)
			if err != nil {
				return nil, err
			}
			cat.Levels[ch][lv] = pool
		}
	}
	return cat, nil
}

func loadLevelCSV(path string) (*LevelPool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	pool, err := parseLevelCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pool, nil
}

// parseLevelCSV reads one level table. The first line is a header.
func parseLevelCSV(r io.Reader) (*LevelPool, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvColumns
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header line")
		}
		return nil, err
	}

	pool := &LevelPool{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		c, err := parseChunkRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := pool.Add(c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return pool, nil
}

func parseChunkRecord(rec []string) (Chunk, error) {
	var c Chunk
	var err error
	if c.Tier, err = strconv.Atoi(rec[colTier]); err != nil {
		return c, fmt.Errorf("tier: %w", err)
	}
	if c.ID, err = strconv.Atoi(rec[colChunkID]); err != nil {
		return c, fmt.Errorf("chunk id: %w", err)
	}
	par, err := strconv.ParseFloat(rec[colParTime], 32)
	if err != nil {
		return c, fmt.Errorf("par time: %w", err)
	}
	c.ParTime = float32(par)
	if c.HasWarpzone, err = strconv.ParseBool(rec[colWarpzone]); err != nil {
		return c, fmt.Errorf("warp-zone flag: %w", err)
	}
	if c.HasPacifier, err = strconv.ParseBool(rec[colPacifier]); err != nil {
		return c, fmt.Errorf("pacifier flag: %w", err)
	}
	return c, nil
}
