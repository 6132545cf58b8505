package fighter

import (
	"strings"
	"testing"
)

const roster = `{"data": [
  {"id": "1", "name": "Alpha", "age": 28, "reach": "71.7\" / 182 cm",
   "division": {"name": "Middleweight", "slug": "middleweight", "weight_lb": 160, "weight_kg": 72.6},
   "stats": {"wins": 24, "losses": 2, "draws": 0, "total_bouts": 26, "ko_wins": 18, "stopped": 1, "ko_percentage": 75}},
  {"id": "2", "name": "Bravo"},
  {"id": "3", "name": "Charlie", "age": 35, "reach": "unknown"}
]}`

func TestFromAPI(t *testing.T) {
	list, err := DecodeAPIList(strings.NewReader(roster))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 fighters, got %d", len(list))
	}

	got := FromAPI(list[0])
	want := Profile{Name: "Alpha", Age: 28, Weight: 160, Reach: 71.7, Wins: 24, Losses: 2, Knockouts: 18, Bouts: 26}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestFromAPIMissingFields(t *testing.T) {
	list, err := DecodeAPIList(strings.NewReader(roster))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FromAPI(list[1]); got != (Profile{Name: "Bravo"}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
	if got := FromAPI(list[2]); got.Reach != 0 || got.Age != 35 {
		t.Fatalf("unexpected profile %+v", got)
	}
}

func TestDecodeAPIListBareArray(t *testing.T) {
	list, err := DecodeAPIList(strings.NewReader(`[{"name": "A"}, {"name": "B"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[1].Name != "B" {
		t.Fatalf("unexpected roster %+v", list)
	}

	for _, bad := range []string{"", "  ", "{", `[{"name": 3}]`} {
		if _, err := DecodeAPIList(strings.NewReader(bad)); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSelect(t *testing.T) {
	list, err := DecodeAPIList(strings.NewReader(roster))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b, err := Select(list, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name != "Alpha" || b.Name != "Bravo" {
		t.Fatalf("expected first two fighters, got %s/%s", a.Name, b.Name)
	}

	a, b, err = Select(list, "Charlie", "Alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name != "Charlie" || b.Reach != 71.7 {
		t.Fatalf("unexpected selection %+v / %+v", a, b)
	}

	if _, _, err := Select(list, "Delta", ""); err == nil {
		t.Fatal("expected error for unknown fighter")
	}
	if _, _, err := Select(list[:1], "", ""); err == nil {
		t.Fatal("expected error for short roster")
	}
}
