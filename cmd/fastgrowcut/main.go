package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"fastgrowcut/internal/models"
	"fastgrowcut/pkg/config"
	"fastgrowcut/pkg/growcut"
	"fastgrowcut/pkg/logging"
	"fastgrowcut/pkg/visualization"
	"fastgrowcut/pkg/volumeio"
)

func main() {
	// Parse command line arguments
	intensityPath := flag.String("intensity", "", "Intensity volume (.npy)")
	seedList := flag.String("seeds", "", "Comma-separated seed volumes (.npy), segmented in order within one session")
	outputPath := flag.String("output", "labels.npy", "Output label volume (.npy)")
	configPath := flag.String("config", "fastgrowcut.yaml", "Configuration file (YAML)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	extractSlices := flag.Bool("extract-slices", false, "Save PNG slices of the final labels along all axes")
	slicesDir := flag.String("slices-dir", "", "Directory for extracted slices (overrides config)")
	logFile := flag.String("log", "", "Rotating log file (overrides config)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	if *intensityPath == "" || *seedList == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *logFile != "" {
		cfg.Log.Logfile = *logFile
	}
	if *verbose {
		cfg.Output.Verbose = true
	}
	if *extractSlices {
		cfg.Output.ExtractSlices = true
	}
	if *slicesDir != "" {
		cfg.Output.SlicesDir = *slicesDir
	}
	cfg.Log.SetLogger()
	defer logging.Close()
	logging.SetVerbose(cfg.Output.Verbose)

	fmt.Println("================================")
	fmt.Println("FAST GROWCUT SEEDED 3D SEGMENTATION")
	fmt.Println("================================")

	intensity, err := volumeio.Read(*intensityPath)
	if err != nil {
		log.Fatalf("Failed to load intensity volume: %v", err)
	}
	geom, ok := models.GeometryOf(intensity)
	if !ok {
		log.Fatalf("Intensity volume %s has no geometry", *intensityPath)
	}
	fmt.Printf("Intensity volume: %s\n", geom)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := growcut.NewSession(cfg.SessionOptions())
	var labels *models.LabelVolume
	seedPaths := strings.Split(*seedList, ",")
	for i, path := range seedPaths {
		path = strings.TrimSpace(path)
		seeds, err := volumeio.ReadLike(path, geom)
		if err != nil {
			log.Fatalf("Failed to load seed volume %s: %v", path, err)
		}

		fmt.Printf("Pass %d/%d with seeds from %s...\n", i+1, len(seedPaths), path)
		startTime := time.Now()
		labels, err = session.RunContext(ctx, intensity, seeds)
		if err != nil {
			log.Fatalf("Segmentation failed: %v", err)
		}
		stats := session.LastStats()
		logging.Infof("Pass %d: %s", i+1, stats)

		fmt.Printf("  %s pass finished in %.3f seconds\n", stats.Mode, time.Since(startTime).Seconds())
		fmt.Printf("  Voxels finalised: %s of %s (pruned %s, reused %s)\n",
			humanize.Comma(int64(stats.Extracted)), humanize.Comma(int64(stats.Voxels)),
			humanize.Comma(int64(stats.Pruned)), humanize.Comma(int64(stats.CopiedThrough)))
		for _, l := range stats.Labels() {
			fmt.Printf("  Label %d: %s voxels\n", l, humanize.Comma(int64(stats.LabelCounts[l])))
		}
	}

	if err := volumeio.WriteLabels(*outputPath, labels); err != nil {
		log.Fatalf("Failed to write labels: %v", err)
	}
	fmt.Printf("\nLabel volume saved to: %s\n", *outputPath)

	if cfg.Output.ExtractSlices {
		fmt.Println("\nExtracting label slices along all axes...")
		viewer := visualization.NewLabelViewer(labels)
		failed := 0
		for _, axis := range []string{"x", "y", "z"} {
			axisDir := filepath.Join(cfg.Output.SlicesDir, axis)
			fmt.Printf("Saving %s-axis slices to: %s\n", axis, axisDir)
			if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
				logging.Errorf("Failed to save %s-axis slices: %v", axis, err)
				failed++
			}
		}
		if failed > 0 {
			fmt.Printf("Slice extraction failed for %d of 3 axes, see log\n", failed)
		} else {
			fmt.Println("Slice extraction completed!")
		}
	}
}
