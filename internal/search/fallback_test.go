package search

import (
	"errors"
	"testing"

	"huntcore/internal/grid"
	"huntcore/internal/model"
	"huntcore/internal/scoring"
	"huntcore/internal/util"
)

func makeGrid(size int, radiusM float64, cell func(row, col int) model.FeatureRecord) *model.FeatureGrid {
	center := model.GeoPoint{Lat: 46.8, Lon: -113.9}
	g := &model.FeatureGrid{
		Center:  center,
		RadiusM: radiusM,
		Size:    size,
		Points:  grid.GridPoints(center, radiusM, size),
		Cells:   make([][]model.FeatureRecord, size),
	}
	for r := 0; r < size; r++ {
		g.Cells[r] = make([]model.FeatureRecord, size)
		for c := 0; c < size; c++ {
			g.Cells[r][c] = cell(r, c)
		}
	}
	return g
}

func goodBedding() model.FeatureRecord {
	return model.FeatureRecord{
		SlopeDeg: 10, AspectDeg: 180, CanopyPct: 0.75, ConiferPct: 0.5,
		NDVI: 0.5, DistanceToRoadM: 600,
	}
}

func amConfig() scoring.Config {
	cfg := scoring.DefaultConfig()
	cfg.Phase = model.PhaseAM
	return cfg
}

func TestScanGridFindsTierOneCandidates(t *testing.T) {
	g := makeGrid(8, 400, func(r, c int) model.FeatureRecord { return goodBedding() })

	got, err := ScanGrid(g, model.SiteBedding, amConfig(), scoring.DefaultTiers(model.SiteBedding), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	for _, cand := range got {
		if cand.SourceTier != 1 {
			t.Errorf("uniformly good terrain must resolve at tier 1, got tier %d", cand.SourceTier)
		}
		if !cand.PassedRequired {
			t.Error("returned candidate must have passed required criteria")
		}
	}
}

func TestScanGridRelaxesToWiderTier(t *testing.T) {
	// Aspect 130 is outside tiers 1 (160-200) and 2 (135-225) but inside
	// tier 3 (120-240).
	g := makeGrid(6, 400, func(r, c int) model.FeatureRecord {
		rec := goodBedding()
		rec.AspectDeg = 130
		return rec
	})

	got, err := ScanGrid(g, model.SiteBedding, amConfig(), scoring.DefaultTiers(model.SiteBedding), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("tier 3 must accept aspect 130")
	}
	for _, cand := range got {
		if cand.SourceTier != 3 {
			t.Errorf("expected tier 3 provenance, got %d", cand.SourceTier)
		}
	}
}

func TestScanGridGrassFieldExhaustsAllTiers(t *testing.T) {
	// Open east-facing grass: canopy and aspect both hopeless at every tier.
	g := makeGrid(6, 400, func(r, c int) model.FeatureRecord {
		rec := goodBedding()
		rec.AspectDeg = 70
		rec.CanopyPct = 0.2
		rec.SlopeDeg = 8
		return rec
	})

	got, err := ScanGrid(g, model.SiteBedding, amConfig(), scoring.DefaultTiers(model.SiteBedding), 3)
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}

	var noSite *NoViableSiteError
	if !errors.As(err, &noSite) {
		t.Fatalf("expected NoViableSiteError, got %v", err)
	}
	if noSite.FailureCounts["canopy"] == 0 || noSite.FailureCounts["aspect"] == 0 {
		t.Fatalf("failure counts must cite canopy and aspect: %v", noSite.FailureCounts)
	}
	if noSite.TiersTried != 3 {
		t.Fatalf("all 3 tiers must be tried, got %d", noSite.TiersTried)
	}
}

func TestScanGridNeverAcceptsEastFacingForFeeding(t *testing.T) {
	// Tier exhaustion must not launder an east-facing cell through the
	// widest tier; the semantic band holds everywhere.
	g := makeGrid(6, 400, func(r, c int) model.FeatureRecord {
		rec := goodBedding()
		rec.AspectDeg = 75
		return rec
	})

	got, err := ScanGrid(g, model.SiteFeeding, amConfig(), scoring.DefaultTiers(model.SiteFeeding), 2)
	if len(got) != 0 {
		t.Fatalf("east-facing cells must never pass an AM feeding search, got %d", len(got))
	}
	if err == nil {
		t.Fatal("expected a structured no-viable-site reason")
	}
}

func TestScanGridFindsSouthFacingPocket(t *testing.T) {
	// Mostly north-facing bowl with a south-facing pocket in one corner.
	g := makeGrid(8, 400, func(r, c int) model.FeatureRecord {
		rec := goodBedding()
		rec.NDVI = 0.6
		if r >= 6 && c >= 6 {
			rec.AspectDeg = 175
		} else {
			rec.AspectDeg = 10
		}
		return rec
	})

	got, err := ScanGrid(g, model.SiteFeeding, amConfig(), scoring.DefaultTiers(model.SiteFeeding), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("the south-facing pocket must be found")
	}
	for _, cand := range got {
		if !util.WithinBand(cand.Feature.AspectDeg, 120, 240) {
			t.Fatalf("candidate aspect %.0f is outside the semantic band", cand.Feature.AspectDeg)
		}
	}
}

func TestScanGridDeterministic(t *testing.T) {
	g := makeGrid(8, 400, func(r, c int) model.FeatureRecord {
		rec := goodBedding()
		rec.CanopyPct = 0.5 + 0.04*float64((r+c)%8)
		return rec
	})

	a, errA := ScanGrid(g, model.SiteBedding, amConfig(), scoring.DefaultTiers(model.SiteBedding), 4)
	b, errB := ScanGrid(g, model.SiteBedding, amConfig(), scoring.DefaultTiers(model.SiteBedding), 4)

	if (errA == nil) != (errB == nil) {
		t.Fatal("error behavior differs across runs")
	}
	if len(a) != len(b) {
		t.Fatalf("result count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Point != b[i].Point || a[i].Score != b[i].Score || a[i].SourceTier != b[i].SourceTier {
			t.Fatalf("result %d differs across runs", i)
		}
	}
}

func TestScanGridRanksByScoreThenDistance(t *testing.T) {
	g := makeGrid(8, 400, func(r, c int) model.FeatureRecord {
		rec := goodBedding()
		// One standout cell away from center.
		if r == 1 && c == 1 {
			rec.CanopyPct = 0.8
			rec.DistanceToRoadM = 900
		} else {
			rec.CanopyPct = 0.55
		}
		return rec
	})

	got, err := ScanGrid(g, model.SiteBedding, amConfig(), scoring.DefaultTiers(model.SiteBedding), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) < 2 {
		t.Fatalf("expected multiple candidates, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatal("candidates must be ordered by descending score")
		}
	}
	best := got[0]
	if best.Feature.CanopyPct != 0.8 {
		t.Fatal("the standout cell must rank first")
	}
}

func TestScanGridRejectsLooseTierLadder(t *testing.T) {
	g := makeGrid(4, 400, func(r, c int) model.FeatureRecord { return goodBedding() })
	tiers := scoring.DefaultTiers(model.SiteBedding)
	tiers[len(tiers)-1].Aspect = scoring.AspectBand{MinDeg: 90, MaxDeg: 270}

	if _, err := ScanGrid(g, model.SiteBedding, amConfig(), tiers, 2); err == nil {
		t.Fatal("a 90-270 tier is a defect and must be rejected")
	}
}
