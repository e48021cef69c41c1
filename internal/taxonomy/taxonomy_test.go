package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefault(t *testing.T) {
	cats, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	food, ok := Find(cats, "food")
	if !ok {
		t.Fatal("expected built-in Food category")
	}
	if !food.HasSubcategory("Bag of Rice") {
		t.Errorf("expected Bag of Rice in %v", food.Subcategories)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := `categories:
  - name: " Energy "
    subcategories: [Kerosene, "", Diesel]
  - name: Food
    subcategories:
      - Garri
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cats, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Energy" {
		t.Fatalf("unexpected categories %+v", cats)
	}
	if got := strings.Join(cats[0].Subcategories, ","); got != "Kerosene,Diesel" {
		t.Errorf("subcategories = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "categories: []", "no categories"},
		{"unnamed", "categories:\n  - subcategories: [a]", "has no name"},
		{"duplicate", "categories:\n  - name: Food\n  - name: food", "duplicate"},
		{"unknown key", "categories:\n  - name: Food\n    colour: red", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
