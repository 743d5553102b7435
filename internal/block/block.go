// Package block defines the closed set of voxel types and their attributes.
// Per-type behavior lives in the definition table rather than switch
// statements, so adding a type means adding a row.
package block

// ID identifies a block type. The zero value is always air.
type ID uint16

const (
	Air ID = iota
	Grass
	Dirt
	Stone
	Sand
	Gravel
	Water
	Log
	Leaves
	Snow
)

// Sound classifies footstep audio for gameplay collaborators.
type Sound uint8

const (
	SoundNone Sound = iota
	SoundGrass
	SoundDirt
	SoundStone
	SoundSand
	SoundWood
	SoundLeaves
	SoundSnow
	SoundSplash
)

// Face indexes the six cube faces, shared with the mesher and the UV table.
const (
	FaceTop = iota
	FaceBottom
	FaceNorth // +Z
	FaceSouth // -Z
	FaceEast  // +X
	FaceWest  // -X
	FaceCount
)

// Tile addresses a cell in the texture atlas grid.
type Tile struct {
	U, V uint8
}

// Def is one row of the block definition table.
type Def struct {
	Name      string
	Solid     bool
	Liquid    bool
	Drops     ID
	Footstep  Sound
	Flammable bool
	Faces     [FaceCount]Tile
}

// uniform fills all six faces with the same atlas tile.
func uniform(t Tile) [FaceCount]Tile {
	return [FaceCount]Tile{t, t, t, t, t, t}
}

var defs = []Def{
	Air:    {Name: "air"},
	Grass:  {Name: "grass", Solid: true, Drops: Dirt, Footstep: SoundGrass, Faces: [FaceCount]Tile{{0, 0}, {2, 0}, {1, 0}, {1, 0}, {1, 0}, {1, 0}}},
	Dirt:   {Name: "dirt", Solid: true, Drops: Dirt, Footstep: SoundDirt, Faces: uniform(Tile{2, 0})},
	Stone:  {Name: "stone", Solid: true, Drops: Stone, Footstep: SoundStone, Faces: uniform(Tile{3, 0})},
	Sand:   {Name: "sand", Solid: true, Drops: Sand, Footstep: SoundSand, Faces: uniform(Tile{4, 0})},
	Gravel: {Name: "gravel", Solid: true, Drops: Gravel, Footstep: SoundStone, Faces: uniform(Tile{5, 0})},
	Water:  {Name: "water", Liquid: true, Footstep: SoundSplash, Faces: uniform(Tile{6, 0})},
	Log:    {Name: "log", Solid: true, Drops: Log, Footstep: SoundWood, Flammable: true, Faces: [FaceCount]Tile{{8, 0}, {8, 0}, {7, 0}, {7, 0}, {7, 0}, {7, 0}}},
	Leaves: {Name: "leaves", Solid: true, Drops: Air, Footstep: SoundLeaves, Flammable: true, Faces: uniform(Tile{9, 0})},
	Snow:   {Name: "snow", Solid: true, Drops: Snow, Footstep: SoundSnow, Faces: uniform(Tile{10, 0})},
}

// lookup returns the definition row, falling back to air for ids outside the
// table so speculative reads never panic.
func lookup(id ID) *Def {
	if int(id) >= len(defs) {
		return &defs[Air]
	}
	return &defs[id]
}

func Name(id ID) string    { return lookup(id).Name }
func Solid(id ID) bool     { return lookup(id).Solid }
func Liquid(id ID) bool    { return lookup(id).Liquid }
func Drops(id ID) ID       { return lookup(id).Drops }
func Footstep(id ID) Sound { return lookup(id).Footstep }
func Flammable(id ID) bool { return lookup(id).Flammable }

// TileFor returns the atlas tile for one face of a block type.
func TileFor(id ID, face int) Tile {
	if face < 0 || face >= FaceCount {
		return Tile{}
	}
	return lookup(id).Faces[face]
}

// Count is the number of defined block types.
func Count() int { return len(defs) }
