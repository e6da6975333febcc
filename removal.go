package main

// toRemovalSpace rewrites indices drawn against a shrinking bound (draw i is
// over len-i remaining items) into positions in the untouched collection, as
// if every earlier draw had deleted its element. For example {1, 3} becomes
// {1, 4}: removing item 1 shifts item 4 down to position 3.
//
// Indices must be in draw order. Each converted index is pushed past every
// earlier pick at or below it; since that can overtake further picks, passes
// repeat until one makes no change.
func toRemovalSpace(indices []int) {
	for i := range indices {
		index := indices[i]
		threshold := -1
		for {
			adjusted := index
			for k := i - 1; k >= 0; k-- {
				if indices[k] <= index && indices[k] > threshold {
					adjusted++
				}
			}
			if adjusted == index {
				break
			}
			threshold = index
			index = adjusted
		}
		indices[i] = index
	}
}
