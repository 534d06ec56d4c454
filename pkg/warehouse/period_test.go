package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		want    Period
		wantErr bool
	}{
		{"", PeriodDefault, false},
		{"default", PeriodDefault, false},
		{"day", PeriodDay, false},
		{"week", PeriodWeek, false},
		{"month", PeriodMonth, false},
		{"year", "", true},
		{"Day", "", true},
		{"7", "", true},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			p, err := ParsePeriod(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestPeriodWindowDays(t *testing.T) {
	assert.Equal(t, 1, PeriodDay.WindowDays())
	assert.Equal(t, 7, PeriodWeek.WindowDays())
	assert.Equal(t, 30, PeriodMonth.WindowDays())
	assert.Equal(t, 365, PeriodDefault.WindowDays())
}
