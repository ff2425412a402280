package save

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/milk9111/perspective/ecs/component"
)

func sampleData() *Data {
	d := NewData()
	d.EnterLevel("village")
	d.View = component.ViewRight
	d.Floor = [3]float64{1, 2, 3}
	d.Keys = 2
	d.SmallCubes = 5
	offset := 1.5
	d.GlobalWaterHeight = &offset
	d.ThisLevel().InactiveNodes["bridge"] = true
	d.ThisLevel().FilledConditions.Secrets = 1
	return d
}

func TestStores(t *testing.T) {
	cases := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{"memory", func(t *testing.T) Store { return NewMemoryStore() }},
		{"sqlite", func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "saves", "slots.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := context.Background()
			s := c.open(t)
			defer s.Close()

			if _, err := s.Load(ctx, 0); !errors.Is(err, ErrNoSnapshot) {
				t.Fatalf("expected ErrNoSnapshot, got %v", err)
			}

			if err := s.Save(ctx, 0, sampleData()); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := s.Load(ctx, 0)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.Level != "village" || got.View != component.ViewRight || got.Floor != [3]float64{1, 2, 3} {
				t.Fatalf("expected village/right/[1 2 3], got %s/%s/%v", got.Level, got.View, got.Floor)
			}
			if got.Keys != 2 || got.SmallCubes != 5 {
				t.Fatalf("expected keys 2 and small cubes 5, got %d and %d", got.Keys, got.SmallCubes)
			}
			if got.GlobalWaterHeight == nil || *got.GlobalWaterHeight != 1.5 {
				t.Fatalf("expected water offset 1.5, got %v", got.GlobalWaterHeight)
			}
			if !got.ThisLevel().InactiveNodes["bridge"] || got.ThisLevel().FilledConditions.Secrets != 1 {
				t.Fatalf("expected village level data to survive, got %+v", *got.ThisLevel())
			}

			if _, err := s.Load(ctx, 1); !errors.Is(err, ErrNoSnapshot) {
				t.Fatalf("expected slot 1 to be empty, got %v", err)
			}

			if err := s.Clear(ctx, 0); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if _, err := s.Load(ctx, 0); !errors.Is(err, ErrNoSnapshot) {
				t.Fatalf("expected ErrNoSnapshot after clear, got %v", err)
			}
		})
	}
}

func TestSQLiteStoreReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "slots.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, 3, sampleData()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Load(ctx, 3)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Level != "village" {
		t.Fatalf("expected village, got %q", got.Level)
	}
}

func TestOpenSQLiteRejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected an error for an empty path")
	}
}

func TestMemoryStoreHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryStore().Save(ctx, 0, NewData()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDataEnterLevelAndClone(t *testing.T) {
	d := NewData()
	d.EnterLevel("village")
	if !d.ThisLevel().FirstVisit {
		t.Fatalf("expected first visit")
	}
	d.EnterLevel("arch")
	d.EnterLevel("village")
	if d.ThisLevel().FirstVisit {
		t.Fatalf("expected a return visit")
	}

	d.ThisLevel().InactiveNodes["chest"] = true
	c := d.Clone()
	c.ThisLevel().InactiveNodes["door"] = true
	if d.ThisLevel().InactiveNodes["door"] {
		t.Fatalf("expected clone to own its level data")
	}
	if !c.ThisLevel().InactiveNodes["chest"] {
		t.Fatalf("expected clone to keep existing nodes")
	}
}

func TestWinConditionsFills(t *testing.T) {
	goal := WinConditions{Chests: 1, Secrets: 2}
	if (WinConditions{Chests: 1, Secrets: 1}).Fills(goal) {
		t.Fatalf("expected one secret short to fail")
	}
	if !(WinConditions{Chests: 2, Secrets: 2, SmallCubes: 4}).Fills(goal) {
		t.Fatalf("expected surplus to fill")
	}
}
