package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dshills/agvsim/pkg/sim"
	"github.com/dshills/agvsim/pkg/warehouse"
)

// TMJ Format Types
// Based on Tiled Map Editor JSON specification (TMJ 1.10)
// Reference: https://doc.mapeditor.org/en/stable/reference/json-map-format/

// TMJMap represents the root TMJ map structure.
type TMJMap struct {
	Type             string        `json:"type"`
	Version          string        `json:"version"`
	TiledVersion     string        `json:"tiledversion"`
	Width            int           `json:"width"`
	Height           int           `json:"height"`
	TileWidth        int           `json:"tilewidth"`
	TileHeight       int           `json:"tileheight"`
	Orientation      string        `json:"orientation"`
	RenderOrder      string        `json:"renderorder"`
	Infinite         bool          `json:"infinite"`
	NextLayerID      int           `json:"nextlayerid"`
	NextObjectID     int           `json:"nextobjectid"`
	Class            string        `json:"class,omitempty"`
	CompressionLevel int           `json:"compressionlevel"`
	Layers           []TMJLayer    `json:"layers"`
	Tilesets         []TMJTileset  `json:"tilesets"`
	Properties       []TMJProperty `json:"properties,omitempty"`
}

// TMJLayer represents a tile layer or an object layer.
type TMJLayer struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"` // "tilelayer" or "objectgroup"
	Visible bool    `json:"visible"`
	Opacity float64 `json:"opacity"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`

	// Tile layer specific
	Data     []uint32 `json:"data,omitempty"`
	Encoding string   `json:"encoding,omitempty"`

	// Object layer specific
	DrawOrder string      `json:"draworder,omitempty"`
	Objects   []TMJObject `json:"objects,omitempty"`
}

// TMJObject represents an AGV or cart placed on the map.
type TMJObject struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Type       string        `json:"type,omitempty"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Visible    bool          `json:"visible"`
	Properties []TMJProperty `json:"properties,omitempty"`
}

// TMJTileset references the tile image used to render tile gids.
type TMJTileset struct {
	FirstGID   uint32 `json:"firstgid"`
	Name       string `json:"name,omitempty"`
	TileWidth  int    `json:"tilewidth,omitempty"`
	TileHeight int    `json:"tileheight,omitempty"`
	TileCount  int    `json:"tilecount,omitempty"`
	Columns    int    `json:"columns,omitempty"`
	Image      string `json:"image,omitempty"`
}

// TMJProperty represents a custom property on an object or the map.
type TMJProperty struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

const tmjTileWidth, tmjTileHeight = 24, 24

// newTMJMap creates a new TMJ map with default settings for width×height
// tiles.
func newTMJMap(width, height int) *TMJMap {
	return &TMJMap{
		Type:             "map",
		Version:          "1.10",
		TiledVersion:     "1.10.2",
		Width:            width,
		Height:           height,
		TileWidth:        tmjTileWidth,
		TileHeight:       tmjTileHeight,
		Orientation:      "orthogonal",
		RenderOrder:      "right-down",
		NextLayerID:      1,
		NextObjectID:     1,
		CompressionLevel: -1,
		Class:            "warehouse",
	}
}

func (m *TMJMap) addTileLayer(name string, data []uint32) {
	m.Layers = append(m.Layers, TMJLayer{
		ID: m.NextLayerID, Name: name, Type: "tilelayer",
		Visible: true, Opacity: 1.0,
		Width: m.Width, Height: m.Height,
		Data: data, Encoding: "csv",
	})
	m.NextLayerID++
}

func (m *TMJMap) addObjectLayer(name string, objects []TMJObject) {
	for i := range objects {
		objects[i].ID = m.NextObjectID
		m.NextObjectID++
	}
	m.Layers = append(m.Layers, TMJLayer{
		ID: m.NextLayerID, Name: name, Type: "objectgroup",
		Visible: true, Opacity: 1.0, DrawOrder: "topdown",
		Objects: objects,
	})
	m.NextLayerID++
}

// tileKindGID maps a TileKind to its local tileset id (1-indexed gid
// offset); Empty tiles are gid 0, Tiled's convention for "no tile".
func tileKindGID(k warehouse.TileKind) uint32 {
	switch k {
	case warehouse.Empty:
		return 0
	default:
		return uint32(k) // TileKind's iota already runs 0..8, Highway==1
	}
}

// TMJ converts the static tile map to a Tiled TMJ map: one tile layer
// keyed by TileKind gid, and, if snap is non-nil, an object layer
// carrying every AGV's and cart's current position.
func TMJ(tiles *warehouse.TileMap, snap *sim.Snapshot) (*TMJMap, error) {
	if tiles == nil {
		return nil, fmt.Errorf("export: tile map cannot be nil")
	}

	m := newTMJMap(tiles.Width, tiles.Height)
	m.Tilesets = []TMJTileset{{
		FirstGID: 1, Name: "warehouse_tiles",
		TileWidth: tmjTileWidth, TileHeight: tmjTileHeight,
		TileCount: 9, Columns: 9, Image: "tilesets/warehouse.png",
	}}

	data := make([]uint32, tiles.Width*tiles.Height)
	for y := 0; y < tiles.Height; y++ {
		for x := 0; x < tiles.Width; x++ {
			tile := tiles.At(warehouse.Position{X: x, Y: y})
			data[y*tiles.Width+x] = tileKindGID(tile.Kind)
		}
	}
	m.addTileLayer("warehouse", data)

	if snap != nil {
		m.addObjectLayer("entities", tmjEntityObjects(snap))
	}

	m.Properties = append(m.Properties, TMJProperty{Name: "generator", Type: "string", Value: "agvsim"})
	return m, nil
}

// tmjEntityObjects builds one TMJObject per AGV and per cart, in
// ascending id order for deterministic output.
func tmjEntityObjects(snap *sim.Snapshot) []TMJObject {
	objects := make([]TMJObject, 0, len(snap.AGVs)+len(snap.Carts))
	for _, a := range snap.AGVs {
		objects = append(objects, TMJObject{
			Name: fmt.Sprintf("agv_%d", a.ID), Type: "agv",
			X: float64(a.Pos.X * tmjTileWidth), Y: float64(a.Pos.Y * tmjTileHeight),
			Width: tmjTileWidth, Height: tmjTileHeight, Visible: true,
			Properties: []TMJProperty{
				{Name: "state", Type: "string", Value: string(a.State)},
				{Name: "blocked", Type: "bool", Value: a.IsBlocked},
				{Name: "carrying_cart", Type: "int", Value: int(a.CarryingCart)},
			},
		})
	}
	for _, c := range snap.Carts {
		objects = append(objects, TMJObject{
			Name: fmt.Sprintf("cart_%d", c.ID), Type: "cart",
			X: float64(c.Pos.X * tmjTileWidth), Y: float64(c.Pos.Y * tmjTileHeight),
			Width: tmjTileWidth, Height: tmjTileHeight, Visible: true,
			Properties: []TMJProperty{
				{Name: "state", Type: "string", Value: string(c.State)},
				{Name: "stationary", Type: "bool", Value: c.Stationary()},
			},
		})
	}
	return objects
}

// MarshalTMJ serializes a TMJ map to indented JSON.
func MarshalTMJ(m *TMJMap) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// MarshalTMJCompact serializes a TMJ map to compact JSON.
func MarshalTMJCompact(m *TMJMap) ([]byte, error) {
	return json.Marshal(m)
}

// SaveTMJToFile exports a TMJ map to a file.
func SaveTMJToFile(m *TMJMap, filepath string) error {
	data, err := MarshalTMJ(m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

// ExportTMJToFile builds the TMJ map for tiles/snap and writes it
// directly to filepath.
func ExportTMJToFile(tiles *warehouse.TileMap, snap *sim.Snapshot, filepath string) error {
	m, err := TMJ(tiles, snap)
	if err != nil {
		return err
	}
	return SaveTMJToFile(m, filepath)
}
