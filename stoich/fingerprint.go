package stoich

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Fingerprint computes a content-addressed identifier for the network.
// Any change to species, reactions, ratios, or energy constants changes
// the fingerprint. Declaration order does not: elements are normalized
// into a deterministic order before hashing.
func (n *Net) Fingerprint() string {
	normalized := struct {
		Name      string     `json:"name"`
		Species   []Species  `json:"species"`
		Reactions []Reaction `json:"reactions"`
	}{
		Name:      n.Name,
		Species:   n.normalizeSpecies(),
		Reactions: n.normalizeReactions(),
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return ""
	}

	hash := sha256.Sum256(data)
	return "net:" + hex.EncodeToString(hash[:])
}

func (n *Net) normalizeSpecies() []Species {
	species := make([]Species, len(n.Species))
	copy(species, n.Species)
	sort.Slice(species, func(i, j int) bool {
		return species[i].ID < species[j].ID
	})
	return species
}

func (n *Net) normalizeReactions() []Reaction {
	reactions := make([]Reaction, len(n.Reactions))
	copy(reactions, n.Reactions)
	for i := range reactions {
		reactions[i].Consumes = sortedTerms(reactions[i].Consumes)
		reactions[i].Produces = sortedTerms(reactions[i].Produces)
	}
	sort.Slice(reactions, func(i, j int) bool {
		return reactions[i].ID < reactions[j].ID
	})
	return reactions
}

// Equal returns true if two networks have the same fingerprint.
func (n *Net) Equal(other *Net) bool {
	if other == nil {
		return false
	}
	return n.Fingerprint() == other.Fingerprint()
}
