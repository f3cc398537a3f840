// Package warehouse defines the static tile grid and directed graph the
// simulation runs on: tile kinds, station groupings, and the one-way
// highway adjacency rules. The layout builder in this package produces an
// immutable data contract consumed by pkg/pathfind and pkg/sim; nothing in
// this package mutates a TileMap or Graph once built.
package warehouse

import "fmt"

// Position is the fundamental grid coordinate used throughout the
// simulation: tile lookups, AGV/cart locations, path nodes, and job targets
// are all keyed by Position.
type Position struct {
	X, Y int
}

// Add returns the position offset by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// ManhattanDistance returns |dx| + |dy| between p and q, the A* heuristic
// and the distance metric used by dispatch's nearest-AGV and
// nearest-station selection.
func (p Position) ManhattanDistance(q Position) int {
	return absInt(p.X-q.X) + absInt(p.Y-q.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// TileKind enumerates the closed set of tile roles in the warehouse grid.
type TileKind int

const (
	Empty TileKind = iota
	Highway
	Parking
	PickStation
	BoxDepot
	PackOff
	AGVSpawn
	CartSpawn
	Racking
)

func (k TileKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Highway:
		return "highway"
	case Parking:
		return "parking"
	case PickStation:
		return "pick_station"
	case BoxDepot:
		return "box_depot"
	case PackOff:
		return "packoff"
	case AGVSpawn:
		return "agv_spawn"
	case CartSpawn:
		return "cart_spawn"
	case Racking:
		return "racking"
	default:
		return "unknown"
	}
}

// IsHighway reports whether the tile kind is a highway tile, the case
// pathfind.FindPath weights at cost 1 instead of cost 10.
func (k TileKind) IsHighway() bool { return k == Highway }

// Walkable reports whether an AGV may ever occupy this tile kind.
// Racking and Empty tiles are never traversable.
func (k TileKind) Walkable() bool {
	switch k {
	case Highway, Parking, PickStation, BoxDepot, PackOff, AGVSpawn, CartSpawn:
		return true
	default:
		return false
	}
}

// Tile is a single grid cell: its kind, and for station-grouped kinds
// (PickStation, parking docks belonging to BoxDepot/PackOff) the station
// group it belongs to. Unaffiliated parking has an empty StationID.
type Tile struct {
	Kind      TileKind
	StationID string
}

// StationCapacity is the fixed mapping of station id to the number of
// tiles in its group, the denominator of fill rate (§3, §4.4 step 1).
type StationCapacity map[string]int

// TileMap is the flat, row-major rasterized warehouse grid. A flat slice
// indexed by y*Width+x is used instead of a map[Position]Tile so that
// per-tick lookups (every AGV, every tick) are O(1) without hashing a
// struct key, matching the addressing scheme of a rasterized tile grid
// at simulation scale.
type TileMap struct {
	Width, Height int
	tiles         []Tile
}

// NewTileMap allocates a width×height grid of Empty tiles.
func NewTileMap(width, height int) *TileMap {
	return &TileMap{
		Width:  width,
		Height: height,
		tiles:  make([]Tile, width*height),
	}
}

// InBounds reports whether p falls within the grid extents.
func (t *TileMap) InBounds(p Position) bool {
	return p.X >= 0 && p.X < t.Width && p.Y >= 0 && p.Y < t.Height
}

// At returns the tile at p. It returns the zero Tile (Empty, no station)
// for out-of-bounds positions rather than erroring, matching the teacher's
// GetTile bounds-clamping convention — callers that need to distinguish
// off-grid from Empty should check InBounds first.
func (t *TileMap) At(p Position) Tile {
	if !t.InBounds(p) {
		return Tile{}
	}
	return t.tiles[p.Y*t.Width+p.X]
}

// Set writes the tile at p. It returns an error if p is out of bounds.
func (t *TileMap) Set(p Position, tile Tile) error {
	if !t.InBounds(p) {
		return fmt.Errorf("warehouse: position %s out of bounds [0,%d)x[0,%d)", p, t.Width, t.Height)
	}
	t.tiles[p.Y*t.Width+p.X] = tile
	return nil
}

// Positions returns every grid position whose tile kind is one of kinds,
// in row-major order. Used by the layout builder to enumerate station
// groups and by the dispatcher to find free tiles deterministically.
func (t *TileMap) Positions(kinds ...TileKind) []Position {
	want := make(map[TileKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []Position
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			tile := t.tiles[y*t.Width+x]
			if want[tile.Kind] {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

// StationPositions returns every tile belonging to stationID, in row-major
// order, regardless of tile kind (a station group may be pick-station
// tiles or parking-dock tiles, e.g. Box_Depot and Pack_off).
func (t *TileMap) StationPositions(stationID string) []Position {
	var out []Position
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			tile := t.tiles[y*t.Width+x]
			if tile.StationID == stationID {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}
