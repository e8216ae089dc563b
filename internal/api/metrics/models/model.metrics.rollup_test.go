package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGranularityWindowDays(t *testing.T) {
	assert.Equal(t, 7, GranularityWeekly.WindowDays(), "cửa sổ tuần phải là 7 ngày")
	assert.Equal(t, 30, GranularityMonthly.WindowDays(), "cửa sổ tháng phải là 30 ngày")
	assert.Equal(t, 90, GranularityQuarterly.WindowDays(), "cửa sổ quý phải là 90 ngày")
	assert.Equal(t, 0, GranularityHourly.WindowDays())
	assert.Equal(t, 0, GranularityDaily.WindowDays())
}

func TestGranularityIsPeriod(t *testing.T) {
	for _, gran := range []Granularity{GranularityWeekly, GranularityMonthly, GranularityQuarterly} {
		assert.True(t, gran.IsPeriod(), "%s phải là granularity cửa sổ trượt", gran)
	}
	for _, gran := range []Granularity{GranularityHourly, GranularityDaily} {
		assert.False(t, gran.IsPeriod(), "%s không phải granularity cửa sổ trượt", gran)
	}
}
