package utility

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ovrsee/internal/common"
)

func TestFormatMinuteBucket(t *testing.T) {
	at := time.Date(2026, 8, 30, 14, 7, 59, 0, time.UTC)
	if got := FormatMinuteBucket(at); got != "20260830-1407" {
		t.Errorf("FormatMinuteBucket = %q, muốn 20260830-1407", got)
	}

	// Thời gian không phải UTC phải được quy về UTC trước khi format
	hanoi := time.FixedZone("ICT", 7*3600)
	at = time.Date(2026, 8, 31, 2, 30, 0, 0, hanoi)
	if got := FormatMinuteBucket(at); got != "20260830-1930" {
		t.Errorf("FormatMinuteBucket với timezone = %q, muốn 20260830-1930", got)
	}
}

func TestFormatDateKey(t *testing.T) {
	at := time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC)
	if got := FormatDateKey(at); got != "20260105" {
		t.Errorf("FormatDateKey = %q, muốn 20260105", got)
	}
}

func TestDayStart(t *testing.T) {
	at := time.Date(2026, 8, 30, 14, 7, 59, 123, time.UTC)
	want := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if got := DayStart(at); !got.Equal(want) {
		t.Errorf("DayStart = %v, muốn %v", got, want)
	}
	if got := NextDayStart(at); !got.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("NextDayStart = %v, muốn %v", got, want.AddDate(0, 0, 1))
	}
}

func TestParseCreateTime_EpochSeconds(t *testing.T) {
	want := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	epoch := want.Unix()

	for name, raw := range map[string]interface{}{
		"int64":   epoch,
		"int":     int(epoch),
		"float64": float64(epoch),
	} {
		got, err := ParseCreateTime(raw)
		if err != nil {
			t.Errorf("ParseCreateTime(%s) lỗi: %v", name, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseCreateTime(%s) = %v, muốn %v", name, got, want)
		}
	}
}

func TestParseCreateTime_MapSecondsNanoseconds(t *testing.T) {
	want := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	got, err := ParseCreateTime(map[string]interface{}{
		"seconds":     float64(want.Unix()),
		"nanoseconds": float64(0),
	})
	if err != nil {
		t.Fatalf("ParseCreateTime(map) lỗi: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("ParseCreateTime(map) = %v, muốn %v", got, want)
	}

	// Biến thể key có prefix gạch dưới
	got, err = ParseCreateTime(primitive.M{"_seconds": want.Unix()})
	if err != nil {
		t.Fatalf("ParseCreateTime(primitive.M) lỗi: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("ParseCreateTime(primitive.M) = %v, muốn %v", got, want)
	}
}

func TestParseCreateTime_DateTimeVaTime(t *testing.T) {
	want := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	got, err := ParseCreateTime(primitive.NewDateTimeFromTime(want))
	if err != nil {
		t.Fatalf("ParseCreateTime(primitive.DateTime) lỗi: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("ParseCreateTime(primitive.DateTime) = %v, muốn %v", got, want)
	}

	got, err = ParseCreateTime(want)
	if err != nil {
		t.Fatalf("ParseCreateTime(time.Time) lỗi: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("ParseCreateTime(time.Time) = %v, muốn %v", got, want)
	}
}

func TestParseCreateTime_GiaTriKhongDocDuoc(t *testing.T) {
	for name, raw := range map[string]interface{}{
		"string":       "2026-08-30",
		"nil":          nil,
		"map thiếu key": map[string]interface{}{"foo": 1},
	} {
		if _, err := ParseCreateTime(raw); !errors.Is(err, common.ErrIngestBadCreateTime) {
			t.Errorf("ParseCreateTime(%s) err = %v, muốn ErrIngestBadCreateTime", name, err)
		}
	}
}
