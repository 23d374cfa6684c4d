package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/loaders"
	"github.com/df07/volumetric-audio/pkg/system"
)

// defaultScene is a room with a doorway sphere, a river and a lake shore
const defaultScene = `{
  "shapes": [
    {"name": "room", "kind": "box", "hollow": true, "size": [8, 4, 6], "pose": {"position": [0, 2, 0]}},
    {"name": "fountain", "kind": "sphere", "radius": 1.5, "pose": {"position": [12, 1, 0]}},
    {"name": "pipe", "kind": "capsule", "radius": 0.3, "height": 10, "direction": "x", "pose": {"position": [0, 4.5, -3]}},
    {"name": "river", "kind": "polyline", "points": [[-30, 0, 20], [0, 0, 15], [30, 0, 25]], "pose": {"position": [0, 0, 0]}},
    {"name": "forest", "kind": "polygon_prism", "depth": 10, "points": [[20, 0, -20], [40, 0, -20], [40, 0, 0], [20, 0, 0]], "pose": {"position": [0, 0, 0]}},
    {"name": "lake", "kind": "half_space", "height": -1, "comparison": "below", "pose": {"position": [0, 0, 0]}}
  ]
}`

// csgScene carves a cave out of a rock with the solid mesh builder
const csgScene = `{
  "shapes": [
    {"name": "cave", "kind": "mesh", "hollow": false, "pose": {"position": [0, 0, 0]},
     "mesh": {"source": "solid", "cells": 48, "collider": true, "solid":
       {"op": "difference", "children": [
         {"op": "box", "size": [10, 6, 10], "round": 1},
         {"op": "sphere", "radius": 2.5},
         {"op": "cylinder", "height": 12, "radius": 1, "rotateDeg": [90, 0, 0]}
       ]}}},
    {"name": "pillar", "kind": "mesh", "pose": {"position": [8, 0, 0]},
     "mesh": {"source": "box", "size": [1, 6, 1], "collider": true}}
  ]
}`

func main() {
	// Parse command line flags
	sceneType := flag.String("scene", "default", "Scene: 'default', 'csg' or a path to a scene JSON file")
	from := flag.String("from", "0,1,0", "Listener start position as x,y,z")
	to := flag.String("to", "", "Listener end position as x,y,z (default: stay at start)")
	ticks := flag.Int("ticks", 10, "Number of ticks to walk from start to end")
	verbose := flag.Bool("verbose", false, "Log scene loading and culling")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Volumetric Audio Walk")
		fmt.Println("Usage: volumetric-audio [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		fmt.Println("  default - Room, fountain, pipe, river, forest and lake")
		fmt.Println("  csg     - Cave carved out of a rock with sdfx, plus a box pillar")
		fmt.Println("  *.json  - Scene file; mesh files resolve relative to it")
		return
	}

	start, err := parseVec(*from)
	if err != nil {
		fmt.Printf("Invalid --from: %v\n", err)
		os.Exit(1)
	}
	end := start
	if *to != "" {
		if end, err = parseVec(*to); err != nil {
			fmt.Printf("Invalid --to: %v\n", err)
			os.Exit(1)
		}
	}
	if *ticks < 1 {
		fmt.Printf("--ticks must be at least 1, got %d\n", *ticks)
		os.Exit(1)
	}

	var logger core.Logger = core.NopLogger{}
	if *verbose {
		logger = core.NewDefaultLogger()
	}

	startTime := time.Now()
	sys, err := createSystem(*sceneType, logger)
	if err != nil {
		fmt.Printf("Error loading scene: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d shapes in %v\n", sys.Len(), time.Since(startTime))

	walkListener(sys, start, end, *ticks)
	printSnapshot(os.Stdout, sys.Snapshot())
}

// createScene returns the configuration for a built-in scene name or scene
// file, together with the directory mesh files resolve against
func createScene(sceneType string) (*loaders.SceneConfig, string, error) {
	switch sceneType {
	case "default":
		cfg, err := loaders.ParseScene([]byte(defaultScene))
		return cfg, ".", err
	case "csg":
		cfg, err := loaders.ParseScene([]byte(csgScene))
		return cfg, ".", err
	case "":
		return nil, "", fmt.Errorf("no scene given")
	}

	if !strings.HasSuffix(sceneType, ".json") {
		return nil, "", fmt.Errorf("unknown scene %q", sceneType)
	}
	cfg, err := loaders.LoadScene(sceneType)
	if err != nil {
		return nil, "", err
	}
	return cfg, filepath.Dir(sceneType), nil
}

func createSystem(sceneType string, logger core.Logger) (*system.System, error) {
	cfg, baseDir, err := createScene(sceneType)
	if err != nil {
		return nil, err
	}
	return cfg.Build(baseDir, logger)
}

// walkListener walks a listener in a straight line from start to end, one step per tick
func walkListener(sys *system.System, start, end core.Vec3, ticks int) {
	listener := system.NewStaticListener(start)
	sys.SetListener(listener)
	sys.Resync()

	for i := 0; i < ticks; i++ {
		t := 1.0
		if ticks > 1 {
			t = float64(i) / float64(ticks-1)
		}
		listener.Set(start.Add(end.Subtract(start).Multiply(t)))
		sys.Tick()
	}
}

// parseVec parses "x,y,z"
func parseVec(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid component %q: %w", p, err)
		}
		v[i] = f
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}

func printSnapshot(w io.Writer, snap system.Snapshot) {
	if snap.ListenerAvailable {
		fmt.Fprintf(w, "After %d ticks, listener at (%.3f, %.3f, %.3f)\n",
			snap.Ticks, snap.Listener.X, snap.Listener.Y, snap.Listener.Z)
	} else {
		fmt.Fprintf(w, "After %d ticks, no listener\n", snap.Ticks)
	}

	for _, s := range snap.Shapes {
		state := "culled"
		if s.Enabled {
			state = "active"
		}
		p := s.Final
		switch {
		case !p.Set:
			fmt.Fprintf(w, "  %-12s %-14s %-6s stale\n", s.Name, s.Kind, state)
		case p.Inside:
			fmt.Fprintf(w, "  %-12s %-14s %-6s inside\n", s.Name, s.Kind, state)
		default:
			fmt.Fprintf(w, "  %-12s %-14s %-6s (%.3f, %.3f, %.3f) at %.3f\n",
				s.Name, s.Kind, state, p.Point.X, p.Point.Y, p.Point.Z, p.Distance)
		}
	}
}
