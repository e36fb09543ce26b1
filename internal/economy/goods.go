// Package economy provides the shared market ledger of named goods.
package economy

// Good names traded on the world market.
const (
	GoodWheat = "wheat"
	GoodApple = "apple"
)

// StarterGoods is the set of goods a fresh market lists, each at zero.
var StarterGoods = []string{GoodWheat, GoodApple}

// Entry is one good and its current quantity.
type Entry struct {
	Good     string `json:"good"`
	Quantity uint64 `json:"quantity"`
}

// Policy selects how a debit that exceeds supply is resolved.
type Policy uint8

const (
	PolicyClamp  Policy = iota // Floor at zero, report the shortfall
	PolicyStrict               // Refuse the debit with ErrInsufficientSupply
)

var policyNames = map[Policy]string{
	PolicyClamp:  "clamp",
	PolicyStrict: "strict",
}

// String returns the policy name.
func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePolicy returns the policy with the given name.
func ParsePolicy(name string) (Policy, bool) {
	for p, n := range policyNames {
		if n == name {
			return p, true
		}
	}
	return PolicyClamp, false
}
