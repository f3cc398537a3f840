package warehouse

import "fmt"

// Reference layout dimensions and the coordinates of the one-way highway
// loop. The loop is a single rectangle, counter-clockwise as drawn with y
// growing downward: the left corridor (x=9)
// flows south, the bottom corridor flows east, the right corridor (x=38)
// flows north, and the top corridor (y=7) flows west back to the start.
// A spawn-exit spur (two opposing lanes at y=7/y=8, x=1-8) feeds AGVs out
// of the spawn block and back, and a pack-off spur (y=7/y=8, x=39-57)
// extends the top corridor east to reach the Pack_off dock.
//
// The exact geometry here is a reference data contract, not a normative
// constraint — §4.1 only fixes the adjacency rules a layout must satisfy.
const (
	refWidth  = 60
	refHeight = 56

	loopLeftCol   = 9
	loopRightCol  = 38
	loopTopRow    = 7
	loopBottomRow = 54

	spawnLaneMinCol  = 1
	spawnLaneMaxCol  = 8
	packoffLaneMinCol = 39
	packoffLaneMaxCol = 57
)

// StationCapacities returns the reference station-capacity table (§6):
// pick stations S1-S9 at 3-5 tiles each, Box_Depot at 8, Pack_off at 4.
func StationCapacities() StationCapacity {
	return StationCapacity{
		"S1": 5, "S2": 4, "S3": 4, "S4": 4, "S5": 3,
		"S6": 4, "S7": 4, "S8": 4, "S9": 4,
		"Box_Depot": 8, "Pack_off": 4,
	}
}

// pickStationRun describes one pick station's dock: a vertical run of
// PickStation tiles at a fixed column, occupying [fromRow, fromRow+cap).
type pickStationRun struct {
	id      string
	col     int
	fromRow int
	cap     int
}

func pickStationRuns() []pickStationRun {
	caps := StationCapacities()
	col := loopLeftCol - 1
	row := 9
	ids := []string{"S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8", "S9"}
	runs := make([]pickStationRun, 0, len(ids))
	for _, id := range ids {
		c := caps[id]
		runs = append(runs, pickStationRun{id: id, col: col, fromRow: row, cap: c})
		row += c + 1 // one tile gap between docks
	}
	return runs
}

// LayoutConfig parameterizes BuildMap. The reference layout has no tunable
// fields today; it exists so alternative layouts can share BuildMap's
// error-handling contract without changing the function's signature.
type LayoutConfig struct{}

// BuildMap constructs the reference warehouse tile map: AGV spawn block,
// single cart-spawn tile, Box_Depot and Pack_off dock/parking groups, nine
// pick-station docks, a scattered unaffiliated parking strip, and the
// highway tiles of the one-way loop plus its two spurs.
//
// BuildMap is deterministic and side-effect-free; the same LayoutConfig
// always yields an identical TileMap.
func BuildMap(_ LayoutConfig) (*TileMap, error) {
	tiles := NewTileMap(refWidth, refHeight)

	// AGV spawn block.
	for y := 1; y <= 6; y++ {
		for x := 1; x <= 8; x++ {
			if err := tiles.Set(Position{X: x, Y: y}, Tile{Kind: AGVSpawn}); err != nil {
				return nil, err
			}
		}
	}

	// Single cart-spawn tile (§9 design note: the older two-tile layout is
	// not normative).
	if err := tiles.Set(Position{X: 0, Y: 7}, Tile{Kind: CartSpawn}); err != nil {
		return nil, err
	}

	// Box_Depot dock: 8 parking tiles directly north of the top corridor.
	for x := 15; x <= 22; x++ {
		if err := tiles.Set(Position{X: x, Y: 6}, Tile{Kind: Parking, StationID: "Box_Depot"}); err != nil {
			return nil, err
		}
	}

	// Pack_off dock: 4 parking tiles directly north of the pack-off spur.
	for x := 49; x <= 52; x++ {
		if err := tiles.Set(Position{X: x, Y: 6}, Tile{Kind: Parking, StationID: "Pack_off"}); err != nil {
			return nil, err
		}
	}

	// Unaffiliated buffer parking between the two docks, used by
	// move_to_buffer targets and idle-AGV nudges.
	for x := 30; x <= 37; x++ {
		if err := tiles.Set(Position{X: x, Y: 6}, Tile{Kind: Parking}); err != nil {
			return nil, err
		}
	}

	// Pick-station docks, stacked down the west flank of the left corridor.
	for _, run := range pickStationRuns() {
		for i := 0; i < run.cap; i++ {
			p := Position{X: run.col, Y: run.fromRow + i}
			if err := tiles.Set(p, Tile{Kind: PickStation, StationID: run.id}); err != nil {
				return nil, err
			}
		}
	}

	if err := paintHighwayLoop(tiles); err != nil {
		return nil, err
	}

	return tiles, nil
}

// paintHighwayLoop marks every highway tile of the reference loop and its
// two spurs. Direction is derived separately, in highwayDirections.
func paintHighwayLoop(tiles *TileMap) error {
	set := func(x, y int) error {
		return tiles.Set(Position{X: x, Y: y}, Tile{Kind: Highway})
	}

	// Spawn-exit spur: out on row 7, back on row 8.
	for x := spawnLaneMinCol; x <= spawnLaneMaxCol; x++ {
		if err := set(x, loopTopRow); err != nil {
			return err
		}
		if err := set(x, loopTopRow+1); err != nil {
			return err
		}
	}

	// Top corridor, core loop plus pack-off extension.
	for x := loopLeftCol; x <= packoffLaneMaxCol; x++ {
		if err := set(x, loopTopRow); err != nil {
			return err
		}
	}

	// Pack-off return lane.
	for x := packoffLaneMinCol; x <= packoffLaneMaxCol; x++ {
		if err := set(x, loopTopRow+1); err != nil {
			return err
		}
	}

	// Left corridor.
	for y := loopTopRow; y <= loopBottomRow; y++ {
		if err := set(loopLeftCol, y); err != nil {
			return err
		}
	}

	// Bottom corridor.
	for x := loopLeftCol; x <= loopRightCol; x++ {
		if err := set(x, loopBottomRow); err != nil {
			return err
		}
	}

	// Right corridor.
	for y := loopTopRow + 1; y <= loopBottomRow; y++ {
		if err := set(loopRightCol, y); err != nil {
			return err
		}
	}

	return nil
}

// ReferenceLayout builds the reference tile map and its directed graph in
// one call, the entry point most callers (sim.NewWorld, cmd/agvsim) use.
func ReferenceLayout() (*TileMap, *Graph, error) {
	tiles, err := BuildMap(LayoutConfig{})
	if err != nil {
		return nil, nil, fmt.Errorf("warehouse: build reference map: %w", err)
	}
	g, err := BuildGraph(tiles)
	if err != nil {
		return nil, nil, fmt.Errorf("warehouse: build reference graph: %w", err)
	}
	return tiles, g, nil
}

// junctionExits enumerates the outgoing highway-to-highway edges for the
// seven named junction tiles of the reference loop (§8 invariant 11),
// where the generic per-segment direction rule in highwayDirections does
// not apply because more than one exit (or a turn) is legal.
func junctionExits(p Position) ([]Position, bool) {
	switch p {
	case Position{X: loopLeftCol, Y: loopTopRow}: // (9,7)
		return []Position{{X: loopLeftCol, Y: loopTopRow + 1}}, true
	case Position{X: loopLeftCol, Y: loopTopRow + 1}: // (9,8)
		return []Position{
			{X: loopLeftCol, Y: loopTopRow + 2},
			{X: loopLeftCol - 1, Y: loopTopRow + 1},
		}, true
	case Position{X: loopLeftCol, Y: loopBottomRow}: // (9,54)
		return []Position{{X: loopLeftCol + 1, Y: loopBottomRow}}, true
	case Position{X: loopRightCol, Y: loopBottomRow}: // (38,54)
		return []Position{{X: loopRightCol, Y: loopBottomRow - 1}}, true
	case Position{X: loopRightCol, Y: loopTopRow + 1}: // (38,8)
		return []Position{
			{X: loopRightCol, Y: loopTopRow},
			{X: loopRightCol + 1, Y: loopTopRow + 1},
		}, true
	case Position{X: loopRightCol, Y: loopTopRow}: // (38,7)
		return []Position{{X: loopRightCol - 1, Y: loopTopRow}}, true
	case Position{X: packoffLaneMaxCol, Y: loopTopRow + 1}: // (57,8)
		return []Position{{X: packoffLaneMaxCol, Y: loopTopRow}}, true
	}
	return nil, false
}

// highwayDirections returns the outgoing highway-to-highway edges for a
// highway tile at p. Junction tiles are checked first; every other
// highway tile follows the fixed direction of the segment it belongs to.
func highwayDirections(p Position) []Position {
	if exits, ok := junctionExits(p); ok {
		return exits
	}
	switch {
	case p.Y == loopTopRow && p.X >= spawnLaneMinCol && p.X <= spawnLaneMaxCol:
		return []Position{{X: p.X + 1, Y: p.Y}} // spawn-exit lane: east
	case p.Y == loopTopRow+1 && p.X >= spawnLaneMinCol && p.X <= spawnLaneMaxCol:
		return []Position{{X: p.X - 1, Y: p.Y}} // spawn-return lane: west
	case p.Y == loopTopRow && p.X > loopLeftCol && p.X <= packoffLaneMaxCol:
		return []Position{{X: p.X - 1, Y: p.Y}} // top corridor: west
	case p.Y == loopTopRow+1 && p.X >= packoffLaneMinCol && p.X < packoffLaneMaxCol:
		return []Position{{X: p.X + 1, Y: p.Y}} // pack-off return lane: east
	case p.X == loopLeftCol && p.Y > loopTopRow+1 && p.Y < loopBottomRow:
		return []Position{{X: p.X, Y: p.Y + 1}} // left corridor: south
	case p.Y == loopBottomRow && p.X > loopLeftCol && p.X < loopRightCol:
		return []Position{{X: p.X + 1, Y: p.Y}} // bottom corridor: east
	case p.X == loopRightCol && p.Y > loopTopRow+1 && p.Y < loopBottomRow:
		return []Position{{X: p.X, Y: p.Y - 1}} // right corridor: north
	default:
		return nil
	}
}

// BuildGraph derives the directed adjacency from tiles, applying the
// one-way highway rule between highway tiles (via highwayDirections), a
// bidirectional sidetrack edge between every highway tile and each
// adjacent walkable non-highway tile, and a bidirectional 4-neighbour edge
// between every pair of adjacent walkable non-highway tiles (§3 invariants
// a-c).
func BuildGraph(tiles *TileMap) (*Graph, error) {
	if tiles == nil {
		return nil, fmt.Errorf("warehouse: BuildGraph requires a non-nil tile map")
	}
	g := NewGraph()
	offsets := [4]Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

	for y := 0; y < tiles.Height; y++ {
		for x := 0; x < tiles.Width; x++ {
			p := Position{X: x, Y: y}
			tile := tiles.At(p)
			if !tile.Kind.Walkable() {
				continue
			}

			if tile.Kind.IsHighway() {
				for _, to := range highwayDirections(p) {
					if tiles.InBounds(to) && tiles.At(to).Kind.IsHighway() {
						g.AddEdge(p, to)
					}
				}
			}

			for _, off := range offsets {
				n := p.Add(off.X, off.Y)
				if !tiles.InBounds(n) {
					continue
				}
				nTile := tiles.At(n)
				if !nTile.Kind.Walkable() {
					continue
				}
				switch {
				case tile.Kind.IsHighway() && !nTile.Kind.IsHighway():
					g.AddBidirectionalEdge(p, n)
				case !tile.Kind.IsHighway() && nTile.Kind.IsHighway():
					g.AddBidirectionalEdge(p, n)
				case !tile.Kind.IsHighway() && !nTile.Kind.IsHighway():
					g.AddBidirectionalEdge(p, n)
				}
			}
		}
	}

	if err := g.Validate(tiles); err != nil {
		return nil, err
	}
	return g, nil
}
