// Production and consumption, reconciled against the market once per frame.

package engine

import (
	"github.com/talgya/market-sim/internal/agents"
	"github.com/talgya/market-sim/internal/economy"
	"github.com/talgya/market-sim/internal/world"
)

// Registry owns the lands and people of a session, in insertion order.
// Entities are never removed during a session; Clear empties both lists.
type Registry struct {
	lands  []world.Land
	people []agents.Person

	// Policy decides what happens when a person eats more than the market holds.
	Policy economy.Policy
}

// Shortage records a person whose consumption the market could not cover.
type Shortage struct {
	Person    int    `json:"person"` // Index in registry order
	Good      string `json:"good"`
	Wanted    uint64 `json:"wanted"`
	Shortfall uint64 `json:"shortfall"`
}

// StepReport summarizes one frame of production and consumption.
type StepReport struct {
	Produced  map[string]uint64
	Consumed  map[string]uint64
	Shortages []Shortage
}

// NewRegistry creates an empty registry.
func NewRegistry(policy economy.Policy) *Registry {
	return &Registry{Policy: policy}
}

// AddLand appends a land parcel.
func (r *Registry) AddLand(l world.Land) {
	r.lands = append(r.lands, l)
}

// AddPerson appends a person.
func (r *Registry) AddPerson(p agents.Person) {
	r.people = append(r.people, p)
}

// Clear drops every land and person.
func (r *Registry) Clear() {
	r.lands = nil
	r.people = nil
}

// Lands returns a copy of the land parcels in insertion order.
func (r *Registry) Lands() []world.Land {
	return append([]world.Land(nil), r.lands...)
}

// People returns a copy of the people in insertion order.
func (r *Registry) People() []agents.Person {
	return append([]agents.Person(nil), r.people...)
}

// LandCount returns the number of land parcels.
func (r *Registry) LandCount() int { return len(r.lands) }

// PeopleCount returns the number of people.
func (r *Registry) PeopleCount() int { return len(r.people) }

// Step runs one frame of the economy: every land produces into the ledger,
// then every person consumes from it. All production lands before any
// consumption, so people can eat what was grown this same frame.
func (r *Registry) Step(ledger *economy.Ledger) StepReport {
	report := StepReport{
		Produced: make(map[string]uint64),
		Consumed: make(map[string]uint64),
	}

	for _, l := range r.lands {
		good, amount := l.Produce()
		ledger.Credit(good, amount)
		report.Produced[good] += amount
	}

	for i, p := range r.people {
		good, amount := p.Consume()
		switch r.Policy {
		case economy.PolicyStrict:
			// Nothing is eaten unless the whole ration is there.
			if err := ledger.TryDebit(good, amount); err != nil {
				report.Shortages = append(report.Shortages, Shortage{
					Person:    i,
					Good:      good,
					Wanted:    amount,
					Shortfall: amount - ledger.Get(good),
				})
				continue
			}
			report.Consumed[good] += amount
		default:
			taken, shortfall := ledger.Debit(good, amount)
			report.Consumed[good] += taken
			if shortfall > 0 {
				report.Shortages = append(report.Shortages, Shortage{
					Person:    i,
					Good:      good,
					Wanted:    amount,
					Shortfall: shortfall,
				})
			}
		}
	}

	return report
}
