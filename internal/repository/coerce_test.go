package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quietseed/internal/errors"
)

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		in      any
		want    bool
		wantErr bool
	}{
		{in: nil, want: false},
		{in: true, want: true},
		{in: false, want: false},
		{in: "true", want: true},
		{in: "TRUE", want: true},
		{in: "false", want: false},
		{in: " 1 ", want: true},
		{in: "0", want: false},
		{in: "", want: false},
		{in: float64(1), want: true},
		{in: float64(0), want: false},
		{in: "maybe", wantErr: true},
		{in: float64(2), wantErr: true},
		{in: []string{"true"}, wantErr: true},
	}

	for _, tt := range tests {
		got, err := CoerceBool(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "%v", tt.in)
			continue
		}
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestCoerceTime(t *testing.T) {
	june12 := time.Date(2023, 6, 12, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		in      any
		want    time.Time
		wantErr bool
	}{
		{name: "date only", in: "2023-06-12", want: june12},
		{name: "iso utc", in: "2023-06-12T00:00:00.000Z", want: june12},
		{name: "iso offset", in: "2023-06-12T02:00:00+02:00", want: june12},
		{name: "local without zone", in: "2023-06-12T00:00", want: june12},
		{name: "epoch millis", in: float64(june12.UnixMilli()), want: june12},
		{name: "epoch millis string", in: "1686528000000", want: june12},
		{name: "time value", in: june12.In(time.FixedZone("x", 3600)), want: june12},
		{name: "garbage", in: "next tuesday", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "zero time", in: time.Time{}, wantErr: true},
		{name: "bool", in: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceTime(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestCoerceRef(t *testing.T) {
	id, ok := coerceRef(float64(3))
	assert.True(t, ok)
	assert.Equal(t, uint(3), id)

	id, ok = coerceRef("7")
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)

	for _, bad := range []any{nil, "", "x", float64(0), float64(-1), float64(1.5), true} {
		_, ok := coerceRef(bad)
		assert.False(t, ok, "%v", bad)
	}
}
