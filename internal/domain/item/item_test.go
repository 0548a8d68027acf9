package item

import "testing"

func TestRegistryCosts(t *testing.T) {
	costs := map[ID]int{
		Apple:       20,
		Berry:       30,
		Coffee:      40,
		MagicCookie: 60,
		StarMote:    80,
	}

	for id, want := range costs {
		def, ok := Get(id)
		if !ok {
			t.Errorf("Expected %s in registry", id)
			continue
		}
		if def.Cost != want {
			t.Errorf("%s cost = %d, want %d", id, def.Cost, want)
		}
	}
}

func TestGetUnknownItem(t *testing.T) {
	if _, ok := Get(ID("Moon Rock")); ok {
		t.Error("Expected unknown item lookup to fail")
	}
}

func TestAllReturnsStableOrder(t *testing.T) {
	first := All()
	second := All()

	if len(first) != 5 {
		t.Fatalf("Expected 5 items, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("All() order unstable at %d: %s vs %s", i, first[i], second[i])
		}
	}
	if first[0] != Apple || first[4] != StarMote {
		t.Errorf("Expected cheapest-first order, got %v", first)
	}
}

func TestStarMoteRestoresEnergyOnly(t *testing.T) {
	def, _ := Get(StarMote)
	if def.Hunger != 0 || def.Happiness != 0 || def.Energy != 8 {
		t.Errorf("Star Mote deltas = (%.0f, %.0f, %.0f), want (0, 0, 8)", def.Hunger, def.Happiness, def.Energy)
	}
}
