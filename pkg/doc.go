// Package pkg provides the core libraries for Lattice, a headless
// measure-and-layout engine.
//
// # Overview
//
// Lattice keeps a tree of layout nodes, each with a measure policy and a
// chain of modifiers. When content or constraints change, only the nodes
// that depend on the change are measured again; everything else keeps its
// size and is at most relaid out. The pkg directory is organized into
// these areas:
//
//  1. [layout] - The engine (nodes, modifiers, passes, the scheduler)
//  2. [policy] - Built-in measure policies and modifier elements
//  3. [host] - An owner that drives frames and records what each one cost
//  4. [scene] - Declarative scenes: a tree plus scripted frames
//  5. [pipeline] - Orchestration (load → run → render) with caching
//
// # Architecture
//
// The typical data flow through Lattice:
//
//	Scene file (TOML, YAML, JSON)
//	         ↓
//	    [scene] package (decode, validate, build the tree)
//	         ↓
//	    [host] package (attach, run one pass per frame)
//	         ↓
//	    [layout] package (measure, place, draw)
//	         ↓
//	    Report JSON, DOT, SVG, PNG, PDF
//
// # Quick Start
//
// Run a scene and print how many nodes the last frame remeasured:
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/matzehuels/lattice/pkg/host"
//	    "github.com/matzehuels/lattice/pkg/scene"
//	)
//
//	sc, _ := scene.Load("toolbar.toml")
//	in, _ := scene.Build(sc, host.Options{})
//	defer in.Close()
//
//	rep, _ := in.Run(context.Background())
//	fmt.Println(len(rep.Last().Remeasured))
//
// # Main Packages
//
// ## Engine
//
// [layout] - Nodes, the two-phase measure and placement protocol, modifier
// chains with their coordinators, alignment lines, lookahead subtrees and
// the depth-ordered scheduler that turns invalidations into passes.
//
// [geom] - Sizes, offsets, constraints, alignment and affine transforms.
//
// [state] - Observable values. Reads during measure or placement are
// recorded, and writes invalidate exactly the readers.
//
// [policy] - Box, row, column and leaf policies; padding, size, offset,
// weight, background and layer modifiers.
//
// ## Hosting
//
// [host] - A Surface that owns a tree, runs frames and records requests,
// remeasured nodes, draw operations and snapshots.
//
// [scene] - Declarative scenes and scripted edits, built into live trees.
//
// ## Output
//
// [render/dot] - Graphviz diagrams of tree snapshots.
//
// [render] - SVG to PDF and PNG conversion.
//
// [pipeline] - Load, run and render with report and artifact caching.
//
// [cache] - File, Redis and MongoDB caches behind one interface.
//
// ## Support
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for layout, pipeline, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/layout
// [policy]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/policy
// [host]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/host
// [scene]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/scene
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/pipeline
// [geom]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/geom
// [state]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/state
// [render]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/render
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/render/dot
// [cache]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/lattice/pkg/buildinfo
package pkg
