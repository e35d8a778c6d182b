package extrude

import "fmt"

// Stats holds a shape's structure and work counters.
type Stats struct {
	Records  int // Records in the dataset
	Tiles    int // Tiles in the tree
	MaxLevel int // Deepest tile level

	Frames       int // Assembly passes run by Render
	Picks        int // Pick calls that reached the tree
	PickHits     int // Picks that resolved a record
	VisibleTiles int // Tiles collected by the last assembly pass

	TilesRegenerated   int
	GroupsRebuilt      int
	RecordsTessellated int
	DrawCalls          int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d records in %d tiles (depth %d), %d frames, %d visible, %d regenerated, %d regrouped, %d draw calls, %d/%d picks hit",
		s.Records, s.Tiles, s.MaxLevel, s.Frames, s.VisibleTiles, s.TilesRegenerated, s.GroupsRebuilt, s.DrawCalls, s.PickHits, s.Picks)
}
