package export

import (
	"bytes"
	"fmt"
	"sort"

	svg "github.com/ajstarks/svgo"

	"github.com/dshills/agvsim/pkg/entity"
	"github.com/dshills/agvsim/pkg/sim"
	"github.com/dshills/agvsim/pkg/warehouse"
)

// SVGOptions configures the static warehouse visualization export.
type SVGOptions struct {
	TileSize   int    // Pixel edge length of one grid tile (default: 24)
	Margin     int    // Canvas margin in pixels (default: 40)
	ShowLabels bool   // Show station id labels on station tiles
	ShowLegend bool   // Show legend explaining tile/entity colors
	ShowStats  bool   // Show sim time, entity counts, and job/order counters in the header
	Title      string // Optional title for the visualization
}

// DefaultSVGOptions returns sensible default SVG export options.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		TileSize:   24,
		Margin:     40,
		ShowLabels: true,
		ShowLegend: true,
		ShowStats:  true,
		Title:      "Warehouse",
	}
}

// SVG renders tiles and, if snap is non-nil, the AGVs/carts it carries, as
// a top-down static visualization.
func SVG(tiles *warehouse.TileMap, snap *sim.Snapshot, opts SVGOptions) ([]byte, error) {
	if tiles == nil {
		return nil, fmt.Errorf("export: tile map cannot be nil")
	}
	if opts.TileSize <= 0 {
		opts.TileSize = 24
	}
	if opts.Margin <= 0 {
		opts.Margin = 40
	}

	headerHeight := 0
	if opts.Title != "" || opts.ShowStats {
		headerHeight = 50
	}
	legendWidth := 0
	if opts.ShowLegend {
		legendWidth = 160
	}

	width := tiles.Width*opts.TileSize + 2*opts.Margin + legendWidth
	height := tiles.Height*opts.TileSize + 2*opts.Margin + headerHeight

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#1a1a2e")

	originX, originY := opts.Margin, opts.Margin+headerHeight
	drawTiles(canvas, tiles, originX, originY, opts)
	if opts.ShowLabels {
		drawStationLabels(canvas, tiles, originX, originY, opts)
	}
	if snap != nil {
		drawCarts(canvas, snap.Carts, originX, originY, opts)
		drawAGVs(canvas, snap.AGVs, originX, originY, opts)
	}
	if opts.ShowLegend {
		drawLegend(canvas, width-legendWidth+10, originY, opts)
	}
	if opts.Title != "" || opts.ShowStats {
		drawHeader(canvas, snap, width, opts)
	}

	canvas.End()
	return buf.Bytes(), nil
}

// SaveSVGToFile renders the visualization and saves it to a file.
// The file is created with 0644 permissions (readable by all, writable by owner).
func SaveSVGToFile(tiles *warehouse.TileMap, snap *sim.Snapshot, filepath string, opts SVGOptions) error {
	data, err := SVG(tiles, snap, opts)
	if err != nil {
		return err
	}
	return writeFile(filepath, data)
}

// drawTiles renders the background grid, one colored rectangle per tile.
func drawTiles(canvas *svg.SVG, tiles *warehouse.TileMap, originX, originY int, opts SVGOptions) {
	for y := 0; y < tiles.Height; y++ {
		for x := 0; x < tiles.Width; x++ {
			tile := tiles.At(warehouse.Position{X: x, Y: y})
			color := tileColor(tile.Kind)
			canvas.Rect(
				originX+x*opts.TileSize, originY+y*opts.TileSize,
				opts.TileSize-1, opts.TileSize-1,
				fmt.Sprintf("fill:%s", color),
			)
		}
	}
}

// drawStationLabels renders each station's id once, centered on the first
// tile (in row-major order) belonging to that station.
func drawStationLabels(canvas *svg.SVG, tiles *warehouse.TileMap, originX, originY int, opts SVGOptions) {
	seen := make(map[string]bool)
	for y := 0; y < tiles.Height; y++ {
		for x := 0; x < tiles.Width; x++ {
			tile := tiles.At(warehouse.Position{X: x, Y: y})
			if tile.StationID == "" || seen[tile.StationID] {
				continue
			}
			seen[tile.StationID] = true
			cx := originX + x*opts.TileSize + opts.TileSize/2
			cy := originY + y*opts.TileSize + opts.TileSize/2 + 4
			canvas.Text(cx, cy, tile.StationID,
				"text-anchor:middle;font-size:9px;font-family:monospace;fill:#e2e8f0")
		}
	}
}

// drawCarts renders stationary carts as small squares; in-transit carts
// are drawn by drawAGVs as the circle they ride inside.
func drawCarts(canvas *svg.SVG, carts []entity.Cart, originX, originY int, opts SVGOptions) {
	sorted := append([]entity.Cart(nil), carts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, c := range sorted {
		if !c.Stationary() {
			continue
		}
		cx := originX + c.Pos.X*opts.TileSize + opts.TileSize/2
		cy := originY + c.Pos.Y*opts.TileSize + opts.TileSize/2
		half := opts.TileSize / 4
		canvas.Rect(cx-half, cy-half, 2*half, 2*half, "fill:#ed8936;stroke:#fff;stroke-width:1")
	}
}

// drawAGVs renders every AGV as a circle, colored by state, with its
// carried cart (if any) drawn as a nested square.
func drawAGVs(canvas *svg.SVG, agvs []entity.AGV, originX, originY int, opts SVGOptions) {
	sorted := append([]entity.AGV(nil), agvs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	radius := opts.TileSize/2 - 2
	for _, a := range sorted {
		cx := originX + a.Pos.X*opts.TileSize + opts.TileSize/2
		cy := originY + a.Pos.Y*opts.TileSize + opts.TileSize/2
		color := agvColor(a.State)
		if a.IsBlocked {
			color = "#f56565"
		}
		canvas.Circle(cx, cy, radius, fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:1", color))
		if a.CarryingCart != entity.NoCart {
			half := radius / 2
			canvas.Rect(cx-half, cy-half, 2*half, 2*half, "fill:#ed8936")
		}
	}
}

// tileColor returns the fill color for a tile kind.
func tileColor(k warehouse.TileKind) string {
	switch k {
	case warehouse.Highway:
		return "#4299e1"
	case warehouse.Parking:
		return "#718096"
	case warehouse.PickStation:
		return "#48bb78"
	case warehouse.BoxDepot:
		return "#9f7aea"
	case warehouse.PackOff:
		return "#f56565"
	case warehouse.AGVSpawn:
		return "#ecc94b"
	case warehouse.CartSpawn:
		return "#38b2ac"
	case warehouse.Racking:
		return "#2d3748"
	default:
		return "#1a1a2e"
	}
}

// agvColor returns the fill color for an AGV state. A blocked AGV is
// recolored separately by the caller regardless of its nominal state.
func agvColor(s entity.AGVState) string {
	switch s {
	case entity.AGVIdle:
		return "#a0aec0"
	case entity.AGVPickingUp, entity.AGVDroppingOff:
		return "#ffd700"
	case entity.AGVMoving, entity.AGVReturningToSpawn, entity.AGVMovingToPickup, entity.AGVMovingToDropoff:
		return "#4299e1"
	default:
		return "#a0aec0"
	}
}

// drawLegend renders a legend explaining tile and entity colors.
func drawLegend(canvas *svg.SVG, x, y int, opts SVGOptions) {
	canvas.Text(x, y, "Tiles", "font-size:13px;font-weight:bold;fill:#e2e8f0")
	y += 18

	tileEntries := []struct {
		name  string
		color string
	}{
		{"Highway", tileColor(warehouse.Highway)},
		{"Parking", tileColor(warehouse.Parking)},
		{"Pick station", tileColor(warehouse.PickStation)},
		{"Box depot", tileColor(warehouse.BoxDepot)},
		{"Pack-off", tileColor(warehouse.PackOff)},
		{"AGV spawn", tileColor(warehouse.AGVSpawn)},
		{"Cart spawn", tileColor(warehouse.CartSpawn)},
	}
	for _, e := range tileEntries {
		canvas.Rect(x, y-9, 12, 12, fmt.Sprintf("fill:%s", e.color))
		canvas.Text(x+18, y, e.name, "font-size:10px;fill:#cbd5e0")
		y += 16
	}

	y += 10
	canvas.Text(x, y, "AGVs", "font-size:13px;font-weight:bold;fill:#e2e8f0")
	y += 18
	agvEntries := []struct {
		name  string
		color string
	}{
		{"Idle", agvColor(entity.AGVIdle)},
		{"Moving", agvColor(entity.AGVMoving)},
		{"Pick/drop", agvColor(entity.AGVPickingUp)},
		{"Blocked", "#f56565"},
	}
	for _, e := range agvEntries {
		canvas.Circle(x+6, y-4, 6, fmt.Sprintf("fill:%s", e.color))
		canvas.Text(x+18, y, e.name, "font-size:10px;fill:#cbd5e0")
		y += 16
	}
}

// drawHeader renders the title and, if snap is available, live stats.
func drawHeader(canvas *svg.SVG, snap *sim.Snapshot, width int, opts SVGOptions) {
	headerY := 20
	if opts.Title != "" {
		canvas.Text(width/2, headerY, opts.Title,
			"text-anchor:middle;font-size:18px;font-weight:bold;fill:#e2e8f0;font-family:sans-serif")
		headerY += 22
	}
	if opts.ShowStats && snap != nil {
		stats := fmt.Sprintf("t=%.1fs  agvs=%d  carts=%d  completed=%d  pending=%d  active=%d",
			snap.Now, len(snap.AGVs), len(snap.Carts), snap.CompletedOrders, snap.PendingJobs, snap.ActiveJobs)
		canvas.Text(width/2, headerY, stats,
			"text-anchor:middle;font-size:11px;fill:#a0aec0;font-family:monospace")
	}
}
