// Package renderstats defines the OpenCensus measures and views recorded while
// rendering.
package renderstats

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	SceneKey = tag.MustNewKey("scene")

	RaysCast        = stats.Int64("boxtracer/rays_cast", "Rays intersected against the scene", stats.UnitDimensionless)
	RayHits         = stats.Int64("boxtracer/ray_hits", "Scene queries that found a surface", stats.UnitDimensionless)
	DegenerateFaces = stats.Int64("boxtracer/degenerate_faces", "Box hits whose point matched no face", stats.UnitDimensionless)
	RowLatency      = stats.Float64("boxtracer/row_latency", "Time spent rendering one image row", stats.UnitMilliseconds)
)

var (
	RaysCastView = &view.View{
		Name:        "boxtracer/rays_cast",
		Description: "Total rays intersected against the scene",
		TagKeys:     []tag.Key{SceneKey},
		Measure:     RaysCast,
		Aggregation: view.Sum(),
	}

	RayHitsView = &view.View{
		Name:        "boxtracer/ray_hits",
		Description: "Total scene queries that found a surface",
		TagKeys:     []tag.Key{SceneKey},
		Measure:     RayHits,
		Aggregation: view.Sum(),
	}

	DegenerateFacesView = &view.View{
		Name:        "boxtracer/degenerate_faces",
		Description: "Count of box hits whose point matched no face",
		Measure:     DegenerateFaces,
		Aggregation: view.Count(),
	}

	RowLatencyView = &view.View{
		Name:        "boxtracer/row_latency",
		Description: "Distribution of per-row render times",
		TagKeys:     []tag.Key{SceneKey},
		Measure:     RowLatency,
		Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000),
	}
)

// RegisterViews registers every view in this package with the default
// OpenCensus worker.
func RegisterViews() error {
	return view.Register(RaysCastView, RayHitsView, DegenerateFacesView, RowLatencyView)
}

// RecordRow records the totals for one finished image row.
func RecordRow(ctx context.Context, sceneName string, rays, hits int64, millis float64) {
	stats.RecordWithOptions(
		ctx,
		stats.WithTags(tag.Upsert(SceneKey, sceneName)),
		stats.WithMeasurements(
			RaysCast.M(rays),
			RayHits.M(hits),
			RowLatency.M(millis),
		),
	)
}

func RecordDegenerateFace(ctx context.Context) {
	stats.Record(ctx, DegenerateFaces.M(1))
}
