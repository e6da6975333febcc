package main

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Save slot layout. The seed sits at a fixed offset; each chapter's structure
// block is located from the end of the file, one record per level slot.
const (
	saveSeedOffset       = 4
	saveStructureTail    = 0x126
	saveChapterStride    = 0x12b
	saveLevelStride      = 0x15
	saveLevelFlagOffset  = 2
	saveLevelSlots       = 12
	saveFlagWarpzone     = 0x10
	saveFlagPacifier     = 0x20
	saveFlagPlain        = 0x00
	saveMinimumLength    = saveSeedOffset + 4 + saveStructureTail + saveChapterStride*numChapters
	saveStructureSpanEnd = saveLevelStride*(saveLevelSlots-1) + saveLevelFlagOffset + 1
)

func saveStructureBase(size, chapter int) int {
	return size - (saveStructureTail + saveChapterStride*(numChapters-chapter))
}

// PatchSave writes seed and the special levels of chapter (0-based) into a
// save slot image in place.
func PatchSave(save []byte, seed uint32, chapter int, cs ChapterStructure) error {
	if chapter < 0 || chapter >= numChapters {
		return fmt.Errorf("chapter %d out of range 1..%d", chapter+1, numChapters)
	}
	if len(save) < saveMinimumLength {
		return fmt.Errorf("save is %d bytes, want at least %d", len(save), saveMinimumLength)
	}
	base := saveStructureBase(len(save), chapter)
	if base < saveSeedOffset+4 || base+saveStructureSpanEnd > len(save) {
		return fmt.Errorf("save layout does not fit chapter %d", chapter+1)
	}

	binary.LittleEndian.PutUint32(save[saveSeedOffset:], seed)
	for j := 0; j < saveLevelSlots; j++ {
		flag := byte(saveFlagPlain)
		switch {
		case j == cs.Warpzone:
			flag = saveFlagWarpzone
		case cs.IsPacifier(j):
			flag = saveFlagPacifier
		}
		save[base+saveLevelStride*j+saveLevelFlagOffset] = flag
	}
	return nil
}

// writeSeedSave copies the save slot at src to dst with the seed and the
// chapter layout it generates. An existing dst is never overwritten.
func writeSeedSave(gen *Generator, src, dst string, seed uint32, chapter int) error {
	if chapter < 0 || chapter >= numChapters {
		return fmt.Errorf("chapter %d out of range 1..%d", chapter+1, numChapters)
	}
	save, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	rep, err := gen.Report(seed)
	if err != nil {
		return err
	}
	if err := PatchSave(save, seed, chapter, rep.Chapters[chapter].Structure); err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := f.Write(save); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return f.Close()
}
