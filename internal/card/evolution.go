package card

// ResolvedPokemon carries a creature record together with its derived
// evolution-chain metadata. The explicit value type replaces the legacy
// trick of smuggling hints through extra map keys on the record.
type ResolvedPokemon struct {
	Pokemon

	// Base is the root ancestor name reached by following evolves_from
	// links within the expansion.
	Base string

	// HasDescendants is true iff another creature in the same expansion
	// names this one as its evolves_from.
	HasDescendants bool
}

// ResolveChains computes evolution-chain metadata for every creature in
// one expansion. It is a pure function of the input set and terminates in
// at most len(pokemon) steps per record, tolerating missing parents and
// cycles (see resolveBase).
func ResolveChains(pokemon []Pokemon) []ResolvedPokemon {
	byName := make(map[string]Pokemon, len(pokemon))
	for _, p := range pokemon {
		if name := NormalizeName(p.Name); name != "" {
			byName[name] = p
		}
	}

	descendants := make(map[string]bool)
	for _, p := range pokemon {
		if parent := NormalizeName(p.EvolvesFrom); parent != "" {
			descendants[parent] = true
		}
	}

	resolved := make([]ResolvedPokemon, len(pokemon))
	for i, p := range pokemon {
		name := NormalizeName(p.Name)
		resolved[i] = ResolvedPokemon{
			Pokemon:        p,
			Base:           resolveBase(name, byName),
			HasDescendants: descendants[name],
		}
	}
	return resolved
}

// resolveBase walks evolves_from links from name to the chain root. A
// record whose parent is empty is the base. Walks that cannot finish
// cleanly fall back to the starting name: a missing parent record treats
// the creature itself as a root, and a revisited name means the links form
// a cycle. The cycle fallback is deliberately the original query name,
// not some node inside the cycle; that is the established corpus behavior.
func resolveBase(name string, byName map[string]Pokemon) string {
	seen := make(map[string]bool)
	cur := name
	for cur != "" && !seen[cur] {
		seen[cur] = true
		rec, ok := byName[cur]
		if !ok {
			break
		}
		parent := NormalizeName(rec.EvolvesFrom)
		if parent == "" {
			return cur
		}
		cur = parent
	}
	return name
}
