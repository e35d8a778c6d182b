package extrude

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// recordIndex provides O(log n) bounding box queries over records using an
// R-tree.
type recordIndex struct {
	rtree *rtreego.Rtree
}

// indexedRecord wraps a record for R-tree storage.
type indexedRecord struct {
	record *Record
}

// Bounds implements rtreego.Spatial.
func (r indexedRecord) Bounds() rtreego.Rect {
	return boundRect(r.record.bounds)
}

// boundRect converts a bound to an R-tree rectangle. The R-tree requires
// non-zero sides, so point-like bounds are padded.
func boundRect(b orb.Bound) rtreego.Rect {
	const epsilon = 1e-9
	lonLength := b.Max.Lon() - b.Min.Lon()
	latLength := b.Max.Lat() - b.Min.Lat()
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min.Lon(), b.Min.Lat()}, []float64{lonLength, latLength})
	return rect
}

func buildRecordIndex(records []*Record) *recordIndex {
	if len(records) == 0 {
		return nil
	}
	// 2D, min=25 children, max=50 children
	rtree := rtreego.NewTree(2, 25, 50)
	for _, r := range records {
		rtree.Insert(indexedRecord{record: r})
	}
	return &recordIndex{rtree: rtree}
}

// RecordsInBounds returns the records whose bounds intersect b, in dataset
// order.
//
// Example:
//
//	downtown := orb.Bound{Min: orb.Point{-71.07, 42.35}, Max: orb.Point{-71.05, 42.37}}
//	for _, r := range ds.RecordsInBounds(downtown) {
//	    r.SetHighlighted(true)
//	}
func (ds *Dataset) RecordsInBounds(b orb.Bound) []*Record {
	if ds.index == nil || ds.index.rtree == nil {
		return ds.recordsInBoundsLinear(b)
	}

	spatials := ds.index.rtree.SearchIntersect(boundRect(b))
	result := make([]*Record, 0, len(spatials))
	for _, s := range spatials {
		result = append(result, s.(indexedRecord).record)
	}
	sortByNumber(result)
	return result
}

// recordsInBoundsLinear scans every record when no index exists.
func (ds *Dataset) recordsInBoundsLinear(b orb.Bound) []*Record {
	var result []*Record
	for _, r := range ds.records {
		if b.Intersects(r.bounds) {
			result = append(result, r)
		}
	}
	return result
}

// RecordsAt returns the records whose polygon contains p, in dataset
// order. Points inside a hole are not contained.
func (ds *Dataset) RecordsAt(p orb.Point) []*Record {
	var result []*Record
	for _, r := range ds.RecordsInBounds(orb.Bound{Min: p, Max: p}) {
		if planar.PolygonContains(r.Polygon(), p) {
			result = append(result, r)
		}
	}
	return result
}

func sortByNumber(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].number < records[j].number
	})
}
