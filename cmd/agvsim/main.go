// Command agvsim runs a headless warehouse simulation from a YAML
// configuration file and writes its final snapshot and metric bundle to
// one or more export formats.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/agvsim/pkg/export"
	"github.com/dshills/agvsim/pkg/metrics"
	"github.com/dshills/agvsim/pkg/sim"
	"github.com/dshills/agvsim/pkg/warehouse"
)

const version = "1.0.0"

var (
	configPath = flag.String("config", "", "Path to YAML configuration file (required)")
	outputDir  = flag.String("output", ".", "Output directory for generated files")
	format     = flag.String("format", "json", "Export format: json, tmj, svg, or all")
	seedFlag   = flag.Uint64("seed", 0, "Override the seed from config (0 = use config seed)")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
	versionF   = flag.Bool("version", false, "Print version and exit")
	help       = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("agvsim version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printHelp()
		os.Exit(0)
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config flag is required")
		printUsage()
		os.Exit(1)
	}

	validFormats := map[string]bool{"json": true, "tmj": true, "svg": true, "all": true}
	if !validFormats[*format] {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q, must be one of: json, tmj, svg, all\n", *format)
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *verbose {
		fmt.Printf("Loading configuration from %s\n", *configPath)
	}

	cfg, err := sim.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *seedFlag != 0 {
		if *verbose {
			fmt.Printf("Overriding seed from %d to %d\n", cfg.Seed, *seedFlag)
		}
		cfg.Seed = *seedFlag
	}
	cfg.Verbose = *verbose

	if *verbose {
		fmt.Printf("Using seed: %d\n", cfg.Seed)
		fmt.Printf("Fleet: %d AGVs, %d carts\n", cfg.NumAGVs, cfg.NumCarts)
		fmt.Printf("Duration: %.0fs at dt=%.2fs\n", cfg.SimDuration, cfg.TickDT)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	start := time.Now()
	if *verbose {
		fmt.Println("Running simulation...")
	}

	bundle, snap, err := sim.RunHeadlessDetailed(*cfg)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	elapsed := time.Since(start)
	if *verbose {
		fmt.Printf("Simulation completed in %v\n", elapsed)
		printStats(bundle)
	}

	tiles, _, err := warehouse.ReferenceLayout()
	if err != nil {
		return fmt.Errorf("building reference layout for export: %w", err)
	}

	baseName := fmt.Sprintf("agvsim_%d", cfg.Seed)

	if *format == "json" || *format == "all" {
		if err := exportJSON(snap, bundle, baseName); err != nil {
			return err
		}
	}
	if *format == "tmj" || *format == "all" {
		if err := exportTMJ(tiles, snap, baseName); err != nil {
			return err
		}
	}
	if *format == "svg" || *format == "all" {
		if err := exportSVG(tiles, snap, cfg.Seed, baseName); err != nil {
			return err
		}
	}

	fmt.Printf("Successfully ran simulation (seed=%d) in %v\n", cfg.Seed, elapsed)
	return nil
}

func exportJSON(snap *sim.Snapshot, bundle *metrics.Bundle, baseName string) error {
	filename := filepath.Join(*outputDir, baseName+".json")
	if *verbose {
		fmt.Printf("Exporting JSON to %s\n", filename)
	}
	payload := struct {
		Snapshot *sim.Snapshot   `json:"snapshot"`
		Metrics  *metrics.Bundle `json:"metrics"`
	}{snap, bundle}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to export JSON: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	if *verbose {
		info, _ := os.Stat(filename)
		fmt.Printf("  Wrote %d bytes\n", info.Size())
	}
	return nil
}

func exportTMJ(tiles *warehouse.TileMap, snap *sim.Snapshot, baseName string) error {
	filename := filepath.Join(*outputDir, baseName+".tmj")
	if *verbose {
		fmt.Printf("Exporting TMJ to %s\n", filename)
	}
	if err := export.ExportTMJToFile(tiles, snap, filename); err != nil {
		return fmt.Errorf("failed to export TMJ: %w", err)
	}
	if *verbose {
		info, _ := os.Stat(filename)
		fmt.Printf("  Wrote %d bytes\n", info.Size())
	}
	return nil
}

func exportSVG(tiles *warehouse.TileMap, snap *sim.Snapshot, seed uint64, baseName string) error {
	filename := filepath.Join(*outputDir, baseName+".svg")
	if *verbose {
		fmt.Printf("Exporting SVG to %s\n", filename)
	}
	opts := export.DefaultSVGOptions()
	opts.Title = fmt.Sprintf("AGV Simulation (seed=%d)", seed)
	if err := export.SaveSVGToFile(tiles, snap, filename, opts); err != nil {
		return fmt.Errorf("failed to export SVG: %w", err)
	}
	if *verbose {
		info, _ := os.Stat(filename)
		fmt.Printf("  Wrote %d bytes\n", info.Size())
	}
	return nil
}

func printStats(bundle *metrics.Bundle) {
	fmt.Println("\nSimulation Statistics:")
	fmt.Printf("  Completed orders: %d\n", bundle.CompletedOrders)
	fmt.Printf("  Orders/hour: %.2f\n", bundle.OrdersPerHour)
	fmt.Printf("  Avg cycle time: %.1fs\n", bundle.AvgCycleTime)
	fmt.Printf("  AGV utilization: %.2f\n", bundle.AGVUtilization)
	fmt.Printf("  AGV blocked fraction: %.2f\n", bundle.AGVBlockedFraction)
	fmt.Printf("  Total ticks: %d\n", bundle.TotalTicks)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage: agvsim -config <config.yaml> [options]")
	fmt.Fprintln(os.Stderr, "\nRun 'agvsim -help' for detailed help")
}

func printHelp() {
	fmt.Printf("agvsim version %s\n\n", version)
	fmt.Println("A command-line tool for running headless AGV warehouse simulations.")
	fmt.Println("\nUsage:")
	fmt.Println("  agvsim -config <config.yaml> [options]")
	fmt.Println("\nRequired Flags:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML configuration file")
	fmt.Println("\nOptional Flags:")
	fmt.Println("  -output string")
	fmt.Println("        Output directory for generated files (default: current directory)")
	fmt.Println("  -format string")
	fmt.Println("        Export format: json, tmj, svg, or all (default: json)")
	fmt.Println("  -seed uint")
	fmt.Println("        Override the seed from config (0 = use config seed) (default: 0)")
	fmt.Println("  -verbose")
	fmt.Println("        Enable verbose output")
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println("\nExamples:")
	fmt.Println("  # Run simulation with default JSON export")
	fmt.Println("  agvsim -config agvsim.yaml")
	fmt.Println("\n  # Run with a custom seed and export every format")
	fmt.Println("  agvsim -config agvsim.yaml -seed 12345 -format all -output ./out")
	fmt.Println("\n  # Export an SVG snapshot with verbose progress logging")
	fmt.Println("  agvsim -config agvsim.yaml -format svg -verbose")
}
