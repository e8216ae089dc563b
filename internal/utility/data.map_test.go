package utility

import (
	"testing"
)

func TestPickMapFields(t *testing.T) {
	source := map[string]interface{}{
		"startDate":    "2026-03-01T00:00:00Z",
		"numberOfDays": 10,
		"secretField":  "không được lọt ra",
	}

	got := PickMapFields(source, []string{"startDate", "numberOfDays", "requireW9"})

	if len(got) != 2 {
		t.Errorf("số key = %d, muốn 2", len(got))
	}
	if got["startDate"] != "2026-03-01T00:00:00Z" {
		t.Errorf("startDate = %v, không khớp nguồn", got["startDate"])
	}
	if _, exists := got["secretField"]; exists {
		t.Error("key ngoài danh sách cho phép không được xuất hiện")
	}
	// Key được phép nhưng không có trong nguồn thì bỏ qua
	if _, exists := got["requireW9"]; exists {
		t.Error("key không tồn tại trong nguồn không được thêm vào")
	}
}

func TestPickMapFields_MapNil(t *testing.T) {
	got := PickMapFields(nil, []string{"a"})
	if got == nil {
		t.Fatal("PickMapFields(nil) phải trả về map rỗng, không phải nil")
	}
	if len(got) != 0 {
		t.Errorf("số key = %d, muốn 0", len(got))
	}
}

func TestMapToJSONRoundTrip(t *testing.T) {
	source := map[string]interface{}{"name": "Ovrsee", "count": float64(3)}

	jsonStr, err := MapToJSON(source)
	if err != nil {
		t.Fatalf("MapToJSON lỗi: %v", err)
	}

	back, err := JSONToMap(jsonStr)
	if err != nil {
		t.Fatalf("JSONToMap lỗi: %v", err)
	}
	if back["name"] != "Ovrsee" || back["count"] != float64(3) {
		t.Errorf("round trip = %v, không khớp nguồn", back)
	}
}
