package metricsvc

import (
	"testing"

	contentmodels "ovrsee/internal/api/content/models"
)

func TestDistinctVideoRefs_TrungLapChiTinhMotLan(t *testing.T) {
	refs := []contentmodels.PlanVideo{
		{OriginalVideoRef: "vid-1"},
		{OriginalVideoRef: "vid-2"},
		{OriginalVideoRef: "vid-1"}, // video nằm trong hai plan
		{OriginalVideoRef: ""},      // tham chiếu hỏng
	}

	got := distinctVideoRefs(refs)
	if len(got) != 2 {
		t.Fatalf("số videoId = %d, muốn 2", len(got))
	}
	if got[0] != "vid-1" || got[1] != "vid-2" {
		t.Errorf("videoRefs = %v, muốn [vid-1 vid-2]", got)
	}
}

func TestDistinctVideoRefs_KhongCoThamChieu(t *testing.T) {
	if got := distinctVideoRefs(nil); len(got) != 0 {
		t.Errorf("videoRefs = %v, muốn rỗng", got)
	}
}
