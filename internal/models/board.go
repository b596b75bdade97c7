// internal/models/board.go

package models

// BoardModel maps a board revision code to a human-readable description.
// The table is used only to validate device support during a probe; it is
// never persisted per session.
type BoardModel struct {
	Model        string
	RAM          string
	Manufacturer string
}

// boardRevisions covers the revision codes reported in /proc/cpuinfo for the
// boards the tool supports. New-style codes only; old-style (pre-2012) boards
// cannot run any catalog runtime anyway.
var boardRevisions = map[string]BoardModel{
	"a02082": {Model: "Raspberry Pi 3 Model B", RAM: "1GB", Manufacturer: "Sony UK"},
	"a22082": {Model: "Raspberry Pi 3 Model B", RAM: "1GB", Manufacturer: "Embest"},
	"a020d3": {Model: "Raspberry Pi 3 Model B+", RAM: "1GB", Manufacturer: "Sony UK"},
	"9020e0": {Model: "Raspberry Pi 3 Model A+", RAM: "512MB", Manufacturer: "Sony UK"},
	"a03111": {Model: "Raspberry Pi 4 Model B", RAM: "1GB", Manufacturer: "Sony UK"},
	"b03111": {Model: "Raspberry Pi 4 Model B", RAM: "2GB", Manufacturer: "Sony UK"},
	"b03112": {Model: "Raspberry Pi 4 Model B", RAM: "2GB", Manufacturer: "Sony UK"},
	"b03114": {Model: "Raspberry Pi 4 Model B", RAM: "2GB", Manufacturer: "Sony UK"},
	"c03111": {Model: "Raspberry Pi 4 Model B", RAM: "4GB", Manufacturer: "Sony UK"},
	"c03112": {Model: "Raspberry Pi 4 Model B", RAM: "4GB", Manufacturer: "Sony UK"},
	"c03114": {Model: "Raspberry Pi 4 Model B", RAM: "4GB", Manufacturer: "Sony UK"},
	"d03114": {Model: "Raspberry Pi 4 Model B", RAM: "8GB", Manufacturer: "Sony UK"},
	"c03130": {Model: "Raspberry Pi 400", RAM: "4GB", Manufacturer: "Sony UK"},
	"902120": {Model: "Raspberry Pi Zero 2 W", RAM: "512MB", Manufacturer: "Sony UK"},
	"c04170": {Model: "Raspberry Pi 5", RAM: "4GB", Manufacturer: "Sony UK"},
	"d04170": {Model: "Raspberry Pi 5", RAM: "8GB", Manufacturer: "Sony UK"},
}

// LookupBoard resolves a revision code from /proc/cpuinfo. The second return
// is false for codes outside the table; callers treat that as an unknown but
// not automatically unsupported board.
func LookupBoard(revision string) (BoardModel, bool) {
	m, ok := boardRevisions[revision]
	return m, ok
}
