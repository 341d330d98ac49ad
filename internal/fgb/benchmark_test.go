package fgb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// =============================================================================
// Test Data Generators
// =============================================================================

// generateOutline creates a closed ring approximating a circle with jittered radius.
func generateOutline(r *rand.Rand, cx, cy, radius float64, vertices int) orb.Ring {
	ring := make(orb.Ring, vertices+1)
	for j := 0; j < vertices; j++ {
		angle := 2 * math.Pi * float64(j) / float64(vertices)
		rad := radius * (0.8 + 0.4*r.Float64())
		ring[j] = orb.Point{cx + rad*math.Cos(angle), cy + rad*math.Sin(angle)}
	}
	ring[vertices] = ring[0]
	return ring
}

// generateCountries creates n country-like features. Every third one is a
// multipolygon with an island.
func generateCountries(r *rand.Rand, n, vertices int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := 0; i < n; i++ {
		cx := -170 + r.Float64()*340
		cy := -80 + r.Float64()*160
		main := orb.Polygon{generateOutline(r, cx, cy, 3, vertices)}

		var g orb.Geometry = main
		if i%3 == 0 {
			island := orb.Polygon{generateOutline(r, cx+5, cy, 0.5, vertices/4+3)}
			g = orb.MultiPolygon{main, island}
		}

		f := geojson.NewFeature(g)
		f.Properties = geojson.Properties{
			"ISO_A2":  fmt.Sprintf("%c%c", 'A'+i/26%26, 'A'+i%26),
			"NAME":    fmt.Sprintf("Country %d", i),
			"NAME_JA": fmt.Sprintf("国 %d", i),
			"POP_EST": float64(r.Intn(100000000)),
		}
		fc.Append(f)
	}
	return fc
}

// =============================================================================
// Size Comparison
// =============================================================================

func TestSizeComparison_Countries(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	t.Logf("%-10s | %-15s | %-15s | %-10s", "Countries", "GeoJSON (bytes)", "FGB (bytes)", "Savings")
	for _, n := range []int{10, 100, 250} {
		fc := generateCountries(r, n, 200)

		geoJSONBytes, err := json.Marshal(fc)
		if err != nil {
			t.Fatalf("JSON marshal failed: %v", err)
		}

		var buf bytes.Buffer
		if err := Write(&buf, fc, nil); err != nil {
			t.Fatalf("FlatGeobuf write failed: %v", err)
		}
		if buf.Len() >= len(geoJSONBytes) {
			t.Errorf("FlatGeobuf (%d bytes) not smaller than GeoJSON (%d bytes)", buf.Len(), len(geoJSONBytes))
		}

		savings := float64(len(geoJSONBytes)-buf.Len()) / float64(len(geoJSONBytes)) * 100
		t.Logf("%-10d | %-15d | %-15d | %.1f%%", n, len(geoJSONBytes), buf.Len(), savings)
	}
}

// =============================================================================
// Serialization Benchmarks
// =============================================================================

func BenchmarkSerialize_GeoJSON_Countries_250(b *testing.B) {
	fc := generateCountries(rand.New(rand.NewSource(42)), 250, 200)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(fc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSerialize_FlatGeobuf_Countries_250(b *testing.B) {
	fc := generateCountries(rand.New(rand.NewSource(42)), 250, 200)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := Write(&buf, fc, nil); err != nil {
			b.Fatal(err)
		}
	}
}

// =============================================================================
// Deserialization Benchmarks
// =============================================================================

func BenchmarkDeserialize_GeoJSON_Countries_250(b *testing.B) {
	fc := generateCountries(rand.New(rand.NewSource(42)), 250, 200)
	data, err := json.Marshal(fc)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := geojson.UnmarshalFeatureCollection(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeserialize_FlatGeobuf_Countries_250(b *testing.B) {
	fc := generateCountries(rand.New(rand.NewSource(42)), 250, 200)
	var buf bytes.Buffer
	if err := Write(&buf, fc, nil); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := Read(data); err != nil {
			b.Fatal(err)
		}
	}
}
