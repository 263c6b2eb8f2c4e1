package card

import "testing"

func findResolved(t *testing.T, resolved []ResolvedPokemon, name string) ResolvedPokemon {
	t.Helper()
	for _, rp := range resolved {
		if NormalizeName(rp.Name) == name {
			return rp
		}
	}
	t.Fatalf("no resolved record named %q", name)
	return ResolvedPokemon{}
}

func TestResolveChainsSimple(t *testing.T) {
	resolved := ResolveChains([]Pokemon{
		{Name: "Eevee"},
		{Name: "Leafeon", EvolvesFrom: "Eevee"},
	})

	leafeon := findResolved(t, resolved, "Leafeon")
	if leafeon.Base != "Eevee" {
		t.Errorf("Leafeon base = %q, want Eevee", leafeon.Base)
	}
	if leafeon.HasDescendants {
		t.Error("Leafeon should have no descendants")
	}

	eevee := findResolved(t, resolved, "Eevee")
	if eevee.Base != "Eevee" {
		t.Errorf("Eevee base = %q, want Eevee", eevee.Base)
	}
	if !eevee.HasDescendants {
		t.Error("Eevee should have descendants")
	}
}

func TestResolveChainsThreeStage(t *testing.T) {
	resolved := ResolveChains([]Pokemon{
		{Name: "Charmander"},
		{Name: "Charmeleon", EvolvesFrom: "Charmander"},
		{Name: "Charizard", EvolvesFrom: "Charmeleon"},
	})

	for _, name := range []string{"Charmander", "Charmeleon", "Charizard"} {
		if rp := findResolved(t, resolved, name); rp.Base != "Charmander" {
			t.Errorf("%s base = %q, want Charmander", name, rp.Base)
		}
	}
	if rp := findResolved(t, resolved, "Charizard"); rp.HasDescendants {
		t.Error("Charizard should have no descendants")
	}
	if rp := findResolved(t, resolved, "Charmeleon"); !rp.HasDescendants {
		t.Error("Charmeleon should have descendants")
	}
}

func TestResolveChainsMissingParentIsRoot(t *testing.T) {
	resolved := ResolveChains([]Pokemon{
		{Name: "Leafeon", EvolvesFrom: "Eevee"}, // Eevee absent from this expansion
	})

	leafeon := findResolved(t, resolved, "Leafeon")
	if leafeon.Base != "Leafeon" {
		t.Errorf("base = %q, want fallback to self for unresolved parent", leafeon.Base)
	}
}

func TestResolveChainsCycleTerminates(t *testing.T) {
	resolved := ResolveChains([]Pokemon{
		{Name: "A", EvolvesFrom: "B"},
		{Name: "B", EvolvesFrom: "A"},
	})

	// Fallback base is the original query name, not a cycle member.
	if rp := findResolved(t, resolved, "A"); rp.Base != "A" {
		t.Errorf("A base = %q, want A", rp.Base)
	}
	if rp := findResolved(t, resolved, "B"); rp.Base != "B" {
		t.Errorf("B base = %q, want B", rp.Base)
	}
	// Both sides of the cycle are named as a parent.
	if rp := findResolved(t, resolved, "A"); !rp.HasDescendants {
		t.Error("A should have descendants")
	}
}

func TestResolveChainsSelfLoop(t *testing.T) {
	resolved := ResolveChains([]Pokemon{
		{Name: "Ouroboros", EvolvesFrom: "Ouroboros"},
	})

	rp := findResolved(t, resolved, "Ouroboros")
	if rp.Base != "Ouroboros" {
		t.Errorf("base = %q, want Ouroboros", rp.Base)
	}
	if !rp.HasDescendants {
		t.Error("self-referencing record is its own descendant parent")
	}
}

func TestResolveChainsNormalizesNames(t *testing.T) {
	resolved := ResolveChains([]Pokemon{
		{Name: "  Eevee "},
		{Name: "Leafeon", EvolvesFrom: "Eevee   "},
	})

	if rp := findResolved(t, resolved, "Leafeon"); rp.Base != "Eevee" {
		t.Errorf("base = %q, want Eevee via normalized lookup", rp.Base)
	}
	if rp := findResolved(t, resolved, "Eevee"); !rp.HasDescendants {
		t.Error("whitespace-padded parent should still be marked")
	}
}

func TestResolveChainsEmptyInput(t *testing.T) {
	if resolved := ResolveChains(nil); len(resolved) != 0 {
		t.Errorf("expected empty result, got %d", len(resolved))
	}
}
