package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogLoads(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	if c.Len() == 0 {
		t.Fatalf("expected bundled catalog to contain items")
	}

	categories := c.Categories()
	if categories[0].Name != "Habitats" {
		t.Fatalf("expected first category Habitats, got %s", categories[0].Name)
	}

	item, ok := c.Lookup("pwr_solar_array")
	if !ok {
		t.Fatalf("expected pwr_solar_array to resolve")
	}
	if item.Production.Power != 5 {
		t.Fatalf("expected solar array to produce 5 power, got %d", item.Production.Power)
	}
}

func TestParsePreservesCategoryOrder(t *testing.T) {
	t.Parallel()

	doc := []byte(`
Zeta:
  - id: z1
    name: Zed
    materialCosts: [{material: iron, quantity: 1}]
Alpha:
  - id: a1
    name: Ay
    materialCosts: [{material: iron, quantity: 2}]
  - id: a2
    name: Bee
    materialCosts: []
`)

	c, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	categories := c.Categories()
	if len(categories) != 2 || categories[0].Name != "Zeta" || categories[1].Name != "Alpha" {
		t.Fatalf("unexpected category order: %+v", categories)
	}
	if len(categories[1].Items) != 2 || categories[1].Items[1].ID != "a2" {
		t.Fatalf("unexpected items in Alpha: %+v", categories[1].Items)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", c.Len())
	}
}

func TestParseAcceptsJSON(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
  "Habitats": [
    {
      "id": "hab1",
      "name": "Habitat",
      "materialCosts": [{"material": "steel", "quantity": 10}, {"material": "polymer", "quantity": 5}],
      "production": {"power": 0},
      "powerCost": {"power": 2, "fuel": 1}
    }
  ]
}`)

	c, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	item, ok := c.Lookup("hab1")
	if !ok {
		t.Fatalf("expected hab1 to resolve")
	}
	if len(item.MaterialCosts) != 2 || item.MaterialCosts[1].Material != "polymer" || item.MaterialCosts[1].Quantity != 5 {
		t.Fatalf("unexpected material costs: %+v", item.MaterialCosts)
	}
	if item.PowerCost.Fuel != 1 {
		t.Fatalf("expected fuel cost 1, got %d", item.PowerCost.Fuel)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "Empty", doc: "", wantErr: ErrEmptyCatalog},
		{name: "NoItems", doc: "Habitats: []\n", wantErr: ErrEmptyCatalog},
		{name: "TopLevelList", doc: "- id: a\n", wantErr: ErrMalformedCatalog},
		{name: "CategoryNotList", doc: "Habitats: nope\n", wantErr: ErrMalformedCatalog},
		{name: "RepeatedCategory", doc: "A:\n  - id: x\nA:\n  - id: y\n", wantErr: ErrMalformedCatalog},
		{name: "RepeatedCategoryJSON", doc: `{"A":[{"id":"x"}],"A":[{"id":"y"}]}`, wantErr: ErrMalformedCatalog},
		{name: "MissingID", doc: "Habitats:\n  - name: nameless\n", wantErr: ErrMissingID},
		{
			name:    "DuplicateAcrossCategories",
			doc:     "A:\n  - id: x\nB:\n  - id: x\n",
			wantErr: ErrDuplicateID,
		},
		{
			name:    "NegativeQuantity",
			doc:     "A:\n  - id: x\n    materialCosts: [{material: iron, quantity: -1}]\n",
			wantErr: ErrMalformedCatalog,
		},
		{
			name:    "BlankMaterial",
			doc:     "A:\n  - id: x\n    materialCosts: [{material: '', quantity: 1}]\n",
			wantErr: ErrMalformedCatalog,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tc.doc)); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLookupReturnsCopies(t *testing.T) {
	t.Parallel()

	c, err := New([]Category{{
		Name: "Habitats",
		Items: []Item{{
			ID:            "hab1",
			MaterialCosts: []MaterialCost{{Material: "steel", Quantity: 10}},
		}},
	}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	item, _ := c.Lookup("hab1")
	item.MaterialCosts[0].Quantity = 999

	again, _ := c.Lookup("hab1")
	if again.MaterialCosts[0].Quantity != 10 {
		t.Fatalf("expected catalog to be immutable, got %d", again.MaterialCosts[0].Quantity)
	}

	categories := c.Categories()
	categories[0].Items[0].ID = "mutated"
	if _, ok := c.Lookup("hab1"); !ok {
		t.Fatalf("mutating Categories result must not affect lookups")
	}
	if c.Categories()[0].Items[0].ID != "hab1" {
		t.Fatalf("expected Categories to return a copy")
	}
}

func TestLookupUnknownID(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	if _, ok := c.Lookup("does-not-exist"); ok {
		t.Fatalf("expected unknown id to miss")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses bundled catalog", func(t *testing.T) {
		c, err := Load("  ")
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if _, ok := c.Lookup("hab_small_square"); !ok {
			t.Fatalf("expected bundled catalog")
		}
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		if err := os.WriteFile(path, []byte("Power:\n  - id: gen1\n    name: Generator\n"), 0o600); err != nil {
			t.Fatalf("write catalog: %v", err)
		}

		c, err := Load(path)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if c.Len() != 1 {
			t.Fatalf("expected 1 item, got %d", c.Len())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
}
