// Package world provides the producing side of the economy: land parcels.
package world

import (
	"strconv"

	"github.com/talgya/market-sim/internal/economy"
)

// LandType enumerates kinds of land.
type LandType uint8

const (
	LandGrassland LandType = iota // Wheat, full yield
	LandOrchard                   // Apples
	LandForest                    // Wild apples, poor yield
	LandMarsh                     // Wheat, reduced yield
	LandDesert                    // Wheat, barely
)

// landTraits holds the good a land kind yields and its fertility out of 10.
type landTraits struct {
	name      string
	good      string
	fertility uint64
}

var landKinds = map[LandType]landTraits{
	LandGrassland: {"grassland", economy.GoodWheat, 10},
	LandOrchard:   {"orchard", economy.GoodApple, 8},
	LandForest:    {"forest", economy.GoodApple, 4},
	LandMarsh:     {"marsh", economy.GoodWheat, 6},
	LandDesert:    {"desert", economy.GoodWheat, 1},
}

// String returns the lowercase land kind name.
func (t LandType) String() string {
	if k, ok := landKinds[t]; ok {
		return k.name
	}
	return "unknown"
}

// ParseLandType returns the land kind with the given name.
func ParseLandType(name string) (LandType, bool) {
	for t, k := range landKinds {
		if k.name == name {
			return t, true
		}
	}
	return LandGrassland, false
}

// Land is a parcel that yields a fixed quantity of one good every frame.
type Land struct {
	Size      uint32   `json:"size"`
	Kind      LandType `json:"kind"`
	YieldRate uint32   `json:"yield_rate"`
}

// NewLand creates a land parcel.
func NewLand(size uint32, kind LandType, yieldRate uint32) Land {
	return Land{Size: size, Kind: kind, YieldRate: yieldRate}
}

// Produce returns the good this land yields and how much of it.
// amount = size × yield rate × fertility / 100, rounded down, so the default
// grassland of size 10 at rate 5 yields 5 wheat.
func (l Land) Produce() (string, uint64) {
	k, ok := landKinds[l.Kind]
	if !ok {
		return economy.GoodWheat, 0
	}
	// Split the product so the fertility multiply cannot overflow.
	base := uint64(l.Size) * uint64(l.YieldRate)
	amount := (base/100)*k.fertility + (base%100)*k.fertility/100
	return k.good, amount
}

// SizeLabel is the label shown for this parcel in the land list.
func (l Land) SizeLabel() string {
	return strconv.FormatUint(uint64(l.Size), 10)
}
