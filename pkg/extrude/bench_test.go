package extrude

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
)

// Benchmarks over a 25,000 block grid covering 10x10 degrees, the size of
// a city building footprint layer.

var benchBounds = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}

func createLargeDataset(b *testing.B) *Dataset {
	b.Helper()
	ds, err := NewGridDataset(benchBounds, 250, 100, 0.5, func(col, row int) (float64, bool) {
		return float64(10 + (col*row)%190), true
	})
	if err != nil {
		b.Fatal(err)
	}
	return ds
}

// BenchmarkNewShape benchmarks building the tile tree.
func BenchmarkNewShape(b *testing.B) {
	opts := DefaultOptions()
	opts.TileCapacity = 1000

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		ds := createLargeDataset(b)
		b.StartTimer()

		if _, err := NewShape(ds, opts); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFrame_Steady benchmarks a frame where nothing changed.
func BenchmarkFrame_Steady(b *testing.B) {
	s, err := NewShape(createLargeDataset(b), DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	f := newFixture(5, 5, 12)
	f.frameAt(b, s, t0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.frame(b, s)
	}
}

// BenchmarkFrame_Regenerate benchmarks a frame where every tile expired.
func BenchmarkFrame_Regenerate(b *testing.B) {
	s, err := NewShape(createLargeDataset(b), DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	f := newFixture(5, 5, 12)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.frameAt(b, s, t0.Add(time.Duration(i)*time.Minute))
	}
}

// BenchmarkPick benchmarks the two pass pick over a 6,250 record tile.
func BenchmarkPick(b *testing.B) {
	s, err := NewShape(createLargeDataset(b), DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	f := newFixture(5, 5, 12)
	p := f.pixelAt(2.51, 2.55)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Pick(f.dc, p); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRecordsInBounds_Rtree benchmarks viewport queries with the R-tree
// index.
func BenchmarkRecordsInBounds_Rtree(b *testing.B) {
	ds := createLargeDataset(b)

	// Small viewport (shows ~100 records)
	viewport := orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{4.4, 5}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ds.RecordsInBounds(viewport)
	}
}

// BenchmarkRecordsInBounds_Linear benchmarks viewport queries with a linear
// scan.
func BenchmarkRecordsInBounds_Linear(b *testing.B) {
	ds := createLargeDataset(b)
	// DON'T use the index - force linear scan
	ds.index = nil

	viewport := orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{4.4, 5}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ds.RecordsInBounds(viewport)
	}
}
