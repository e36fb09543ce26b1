// Package agents provides the consuming side of the economy: the people.
package agents

import "github.com/talgya/market-sim/internal/economy"

// PersonType is a person's occupation, which sets their appetite and staple.
type PersonType uint8

const (
	PersonFarmer PersonType = iota
	PersonMiner
	PersonCrafter
	PersonMerchant
	PersonLaborer
)

type roleTraits struct {
	name     string
	staple   string
	appetite uint64 // Units eaten per 5 capacity
}

var roles = map[PersonType]roleTraits{
	PersonFarmer:   {"farmer", economy.GoodWheat, 1},
	PersonMiner:    {"miner", economy.GoodWheat, 2},
	PersonCrafter:  {"crafter", economy.GoodWheat, 1},
	PersonMerchant: {"merchant", economy.GoodApple, 1},
	PersonLaborer:  {"laborer", economy.GoodWheat, 2},
}

// String returns the lowercase role name.
func (p PersonType) String() string {
	if r, ok := roles[p]; ok {
		return r.name
	}
	return "unknown"
}

// ParsePersonType returns the role with the given name.
func ParsePersonType(name string) (PersonType, bool) {
	for p, r := range roles {
		if r.name == name {
			return p, true
		}
	}
	return PersonFarmer, false
}

// Person consumes a fixed quantity of their staple good every frame.
type Person struct {
	Capacity uint32     `json:"capacity"`
	Role     PersonType `json:"role"`
}

// NewPerson creates a person.
func NewPerson(capacity uint32, role PersonType) Person {
	return Person{Capacity: capacity, Role: role}
}

// Consume returns the good this person eats and how much of it:
// capacity × appetite / 5, rounded down. A default farmer of capacity 5 eats 1 wheat.
func (p Person) Consume() (string, uint64) {
	r, ok := roles[p.Role]
	if !ok {
		return economy.GoodWheat, 0
	}
	return r.staple, uint64(p.Capacity) * r.appetite / 5
}
