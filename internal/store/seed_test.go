package store

import (
	"context"
	"testing"

	"github.com/dukerupert/fittrack/internal/database"
)

func TestSeedDemoIdempotent(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cs, ps, gs := NewCheckinStore(db), NewProfileStore(db), NewGoalStore(db)
	ctx := context.Background()
	dates := []string{"2024-01-13", "2024-01-14", "2024-01-15"}

	for i := 0; i < 2; i++ {
		if err := SeedDemo(ctx, cs, ps, gs, "demo", dates); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	p, _ := ps.Get(ctx, "demo")
	if p == nil || p.HeightCM != 180 {
		t.Errorf("profile = %+v, want seeded profile", p)
	}
	if n, _ := gs.CountForUser(ctx, "demo"); n != 1 {
		t.Errorf("goals = %d, want 1", n)
	}

	series, err := cs.ChartSeries(ctx, "demo", dates)
	if err != nil {
		t.Fatalf("chart series: %v", err)
	}
	want := []int{250, 400, 300}
	for i, p := range series {
		if p.Calories != want[i] {
			t.Errorf("series[%d] = %d, want %d", i, p.Calories, want[i])
		}
	}

	c, _ := cs.GetByDate(ctx, "demo", "2024-01-14")
	if c.WaterIntakeML != 1600 {
		t.Errorf("water = %d, want 1600", c.WaterIntakeML)
	}
	if len(c.Activities) != 1 {
		t.Errorf("activities = %d, want 1", len(c.Activities))
	}
}
