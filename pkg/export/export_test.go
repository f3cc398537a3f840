package export_test

import (
	"encoding/json"
	"testing"

	"github.com/dshills/agvsim/pkg/dispatch"
	"github.com/dshills/agvsim/pkg/export"
	"github.com/dshills/agvsim/pkg/sim"
	"github.com/dshills/agvsim/pkg/warehouse"
)

func testWorld(t *testing.T) (*warehouse.TileMap, *sim.World) {
	t.Helper()
	tiles, g, err := warehouse.ReferenceLayout()
	if err != nil {
		t.Fatalf("ReferenceLayout: %v", err)
	}
	w := sim.NewWorld(tiles, g, warehouse.StationCapacities(), 7, dispatch.DefaultConfig())
	if _, err := w.SpawnAGV(warehouse.Position{X: 1, Y: 7}); err != nil {
		t.Fatalf("SpawnAGV: %v", err)
	}
	w.SpawnCart(warehouse.Position{X: 2, Y: 7})
	return tiles, w
}

func TestJSON_RoundTripsSnapshotShape(t *testing.T) {
	_, w := testWorld(t)
	snap := w.Snapshot()

	data, err := export.JSON(snap)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["AGVs"]; !ok {
		t.Error("expected AGVs field in exported JSON")
	}
	if _, ok := decoded["Carts"]; !ok {
		t.Error("expected Carts field in exported JSON")
	}
}

func TestJSONCompact_IsSmallerThanIndented(t *testing.T) {
	_, w := testWorld(t)
	snap := w.Snapshot()

	full, err := export.JSON(snap)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	compact, err := export.JSONCompact(snap)
	if err != nil {
		t.Fatalf("JSONCompact: %v", err)
	}
	if len(compact) >= len(full) {
		t.Errorf("compact export (%d bytes) not smaller than indented (%d bytes)", len(compact), len(full))
	}
}

func TestSVG_RejectsNilTileMap(t *testing.T) {
	if _, err := export.SVG(nil, nil, export.DefaultSVGOptions()); err == nil {
		t.Fatal("expected error for nil tile map")
	}
}

func TestSVG_ProducesWellFormedDocument(t *testing.T) {
	tiles, w := testWorld(t)
	snap := w.Snapshot()

	data, err := export.SVG(tiles, snap, export.DefaultSVGOptions())
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	out := string(data)
	if len(out) == 0 {
		t.Fatal("expected non-empty SVG output")
	}
	if out[:4] != "<?xm" && out[:4] != "<svg" {
		t.Errorf("unexpected SVG prefix: %q", out[:20])
	}
}

func TestTMJ_LayerDataMatchesTileGrid(t *testing.T) {
	tiles, w := testWorld(t)
	snap := w.Snapshot()

	m, err := export.TMJ(tiles, snap)
	if err != nil {
		t.Fatalf("TMJ: %v", err)
	}
	if m.Width != tiles.Width || m.Height != tiles.Height {
		t.Errorf("map dims = (%d,%d), want (%d,%d)", m.Width, m.Height, tiles.Width, tiles.Height)
	}

	var tileLayer *export.TMJLayer
	var objectLayer *export.TMJLayer
	for i := range m.Layers {
		switch m.Layers[i].Type {
		case "tilelayer":
			tileLayer = &m.Layers[i]
		case "objectgroup":
			objectLayer = &m.Layers[i]
		}
	}
	if tileLayer == nil {
		t.Fatal("expected a tile layer")
	}
	if len(tileLayer.Data) != tiles.Width*tiles.Height {
		t.Errorf("tile layer data len = %d, want %d", len(tileLayer.Data), tiles.Width*tiles.Height)
	}
	if objectLayer == nil {
		t.Fatal("expected an object layer")
	}
	if len(objectLayer.Objects) != len(snap.AGVs)+len(snap.Carts) {
		t.Errorf("object count = %d, want %d", len(objectLayer.Objects), len(snap.AGVs)+len(snap.Carts))
	}
}

func TestTMJ_RejectsNilTileMap(t *testing.T) {
	if _, err := export.TMJ(nil, nil); err == nil {
		t.Fatal("expected error for nil tile map")
	}
}
