// Package pkg provides the core libraries for molview molecule rendering.
//
// # Overview
//
// molview reads structure files, rotates the molecule about its centroid and
// draws it as a depth-sorted SVG of shaded atoms and bonds. The pkg
// directory is organized into these areas:
//
//  1. Domain: [molecule], [geometry], [elements], [sdf]
//  2. Drawing: [projection], [render], [render/nodelink]
//  3. Infrastructure: [cache], [store], [observability]
//  4. Orchestration: [pipeline]
//
// # Architecture
//
// The typical data flow:
//
//	Structure file
//	      ↓
//	  [sdf] package (parse atoms and bonds)
//	      ↓
//	  [molecule] package (rotate a copy about the centroid)
//	      ↓
//	  [projection] package (autofit onto the 1000x1000 canvas)
//	      ↓
//	  [render] package (painter's algorithm)
//	      ↓
//	  SVG/PNG/PDF/JSON/DOT output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/molview/pkg/geometry"
//	    "github.com/matzehuels/molview/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	res, err := runner.Execute(context.Background(), src, "caffeine", pipeline.Options{
//	    Rotation: geometry.Euler{Y: 45},
//	    Formats:  []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// The CLI (cmd/molview) and the HTTP server (internal/server) both go
// through [pipeline.Runner], so caching behaves the same everywhere.
package pkg
