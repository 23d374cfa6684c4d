package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/df07/volumetric-audio/pkg/loaders"
	"github.com/df07/volumetric-audio/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	scenePath := flag.String("scene", "", "Scene JSON file to serve")
	flag.Parse()

	if *scenePath == "" {
		log.Printf("Usage: web --scene=<scene.json> [--port=8080]")
		os.Exit(1)
	}

	cfg, err := loaders.LoadScene(*scenePath)
	if err != nil {
		log.Printf("Error loading scene: %v", err)
		os.Exit(1)
	}

	console := server.NewConsole(100, "scene")
	console.SetEcho(os.Stdout)
	sys, err := cfg.Build(filepath.Dir(*scenePath), console)
	if err != nil {
		log.Printf("Error building scene: %v", err)
		os.Exit(1)
	}
	console.SetTickSource(sys.Ticks)

	webServer := server.NewServer(*port, sys, console)

	log.Printf("Volumetric Audio Inspect Server")
	log.Printf("Visit http://localhost:%d/api/shapes to inspect %d shapes", *port, sys.Len())

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
