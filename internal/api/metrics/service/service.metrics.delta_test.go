package metricsvc

import (
	"testing"

	metricmodels "ovrsee/internal/api/metrics/models"
)

func TestClampDelta(t *testing.T) {
	if got := ClampDelta(150, 100); got != 50 {
		t.Errorf("ClampDelta(150, 100) = %d, muốn 50", got)
	}
	if got := ClampDelta(100, 100); got != 0 {
		t.Errorf("ClampDelta(100, 100) = %d, muốn 0", got)
	}
	// Counter nguồn giảm thì delta phải bị chặn tại 0, không được âm
	if got := ClampDelta(80, 100); got != 0 {
		t.Errorf("ClampDelta(80, 100) = %d, muốn 0", got)
	}
	if got := ClampDelta(0, 0); got != 0 {
		t.Errorf("ClampDelta(0, 0) = %d, muốn 0", got)
	}
}

func TestDeltaTotals_ChanTungCounterRiengBiet(t *testing.T) {
	current := CounterTotals{ViewCount: 200, LikeCount: 50, CommentCount: 10, ShareCount: 3}
	previous := CounterTotals{ViewCount: 150, LikeCount: 60, CommentCount: 10, ShareCount: 1}

	got := DeltaTotals(current, previous)

	if got.ViewCount != 50 {
		t.Errorf("delta view = %d, muốn 50", got.ViewCount)
	}
	// Like giảm từ 60 xuống 50, delta phải là 0 chứ không phải -10
	if got.LikeCount != 0 {
		t.Errorf("delta like = %d, muốn 0", got.LikeCount)
	}
	if got.CommentCount != 0 {
		t.Errorf("delta comment = %d, muốn 0", got.CommentCount)
	}
	if got.ShareCount != 2 {
		t.Errorf("delta share = %d, muốn 2", got.ShareCount)
	}
}

func TestTotalsOfEntry_NilTraVeZero(t *testing.T) {
	got := TotalsOfEntry(nil)
	if got != (CounterTotals{}) {
		t.Errorf("TotalsOfEntry(nil) = %+v, muốn zero", got)
	}

	entry := &metricmodels.RollupEntry{ViewCount: 7, LikeCount: 5, CommentCount: 3, ShareCount: 1}
	got = TotalsOfEntry(entry)
	if got.ViewCount != 7 || got.LikeCount != 5 || got.CommentCount != 3 || got.ShareCount != 1 {
		t.Errorf("TotalsOfEntry = %+v, không khớp entry", got)
	}
}
