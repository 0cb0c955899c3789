package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/studytrack/internal/model"
)

func strPtr(s string) *string { return &s }
func numPtr(n float64) *float64 { return &n }
func boolPtr(b bool) *bool { return &b }

const validID = "6f1c2a4e-8d1b-4c3e-9a57-0b2d3e4f5a6b"

func TestCheck_Required(t *testing.T) {
	v := Check(
		Rule{Field: "title", Kind: String, Value: (*string)(nil), Required: true},
		Rule{Field: "time", Kind: Int, Value: (*float64)(nil), Required: true},
		Rule{Field: "filterDates", Kind: Bool, Value: (*bool)(nil), Required: true},
		Rule{Field: "session", Kind: ID, Value: "", Required: true},
	)
	assert.Equal(t, []string{
		"title is required",
		"time is required",
		"filterDates is required",
		"session is required",
	}, v)
}

func TestCheck_OptionalAbsentIsSkipped(t *testing.T) {
	v := Check(
		Rule{Field: "grade", Kind: String, Value: (*string)(nil), MaxLen: 50},
		Rule{Field: "startYear", Kind: Int, Value: (*float64)(nil), Range: &Range{Min: 1900, Max: 2100}},
		Rule{Field: "selectedClasses", Kind: IDList, Value: []string(nil)},
	)
	assert.Empty(t, v)
}

func TestCheck_StringConstraints(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want []string
	}{
		{
			name: "空白のみはNotBlankで拒否",
			rule: Rule{Field: "classId", Kind: String, Value: strPtr("   "), NotBlank: true, MinLen: 1, MaxLen: 50},
			want: []string{"classId cannot be empty"},
		},
		{
			name: "最大長超過",
			rule: Rule{Field: "professor", Kind: String, Value: strPtr("abcdef"), MaxLen: 5},
			want: []string{"professor must be at most 5 characters"},
		},
		{
			name: "最大長はrune単位",
			rule: Rule{Field: "what", Kind: String, Value: strPtr("微分積分"), MaxLen: 4},
			want: nil,
		},
		{
			name: "列挙外の値",
			rule: Rule{Field: "season", Kind: String, Value: strPtr("Autumn"), Enum: []string{"Spring", "Fall"}},
			want: []string{"season must be one of: Spring, Fall"},
		},
		{
			name: "演算子接頭辞を拒否",
			rule: Rule{Field: "type", Kind: String, Value: strPtr("$where"), NoOperatorPrefix: true},
			want: []string{"type cannot start with $"},
		},
		{
			name: "不正なID",
			rule: Rule{Field: "semesterId", Kind: ID, Value: strPtr("not-an-id")},
			want: []string{"semesterId must be a valid id"},
		},
		{
			name: "不正な日付",
			rule: Rule{Field: "startDate", Kind: Date, Value: strPtr("yesterday")},
			want: []string{"startDate must be a valid date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.rule))
		})
	}
}

func TestCheck_IntConstraints(t *testing.T) {
	minutes := &Range{Min: 0, Max: model.MaxMinutes}

	assert.Empty(t, Check(Rule{Field: "time", Kind: Int, Value: numPtr(1440), Range: minutes}))
	assert.Empty(t, Check(Rule{Field: "time", Kind: Int, Value: numPtr(0), Range: minutes}))
	assert.Equal(t, []string{"time must be at most 1440"},
		Check(Rule{Field: "time", Kind: Int, Value: numPtr(1441), Range: minutes}))
	assert.Equal(t, []string{"time must be at least 0"},
		Check(Rule{Field: "time", Kind: Int, Value: numPtr(-1), Range: minutes}))
	assert.Equal(t, []string{"time must be an integer"},
		Check(Rule{Field: "time", Kind: Int, Value: numPtr(12.5), Range: minutes}))
}

func TestCheck_StringList(t *testing.T) {
	rule := Rule{
		Field:            "selectedDistractionTypes",
		Kind:             StringList,
		Value:            []string{"phone", "$where", "", "0123456789012345678901234567890123456789012345678901"},
		MaxLen:           50,
		NotBlank:         true,
		NoOperatorPrefix: true,
	}
	assert.Equal(t, []string{
		"selectedDistractionTypes[1] cannot start with $",
		"selectedDistractionTypes[2] cannot be empty",
		"selectedDistractionTypes[3] must be at most 50 characters",
	}, Check(rule))
}

func TestCheck_IDList(t *testing.T) {
	v := Check(Rule{Field: "selectedClasses", Kind: IDList, Value: []string{validID, "{$ne: null}"}})
	assert.Equal(t, []string{"selectedClasses[1] must be a valid id"}, v)

	v = Check(Rule{Field: "selectedClasses", Kind: IDList, Value: []string{validID, validID}, MaxItems: 1})
	assert.Equal(t, []string{"selectedClasses must have at most 1 items"}, v)
}

func TestCheck_CustomRunsOnlyAfterBuiltins(t *testing.T) {
	called := false
	custom := func() string {
		called = true
		return "school contains forbidden content"
	}

	v := Check(Rule{Field: "school", Kind: String, Value: strPtr(""), NotBlank: true, Custom: custom})
	assert.Equal(t, []string{"school cannot be empty"}, v)
	assert.False(t, called)

	v = Check(Rule{Field: "school", Kind: String, Value: strPtr("<script>"), Custom: custom})
	assert.Equal(t, []string{"school contains forbidden content"}, v)
	assert.True(t, called)
}

func TestCheck_BoolPresent(t *testing.T) {
	assert.Empty(t, Check(Rule{Field: "filterClass", Kind: Bool, Value: boolPtr(false), Required: true}))
}

func TestErr(t *testing.T) {
	assert.NoError(t, Err(nil))

	err := Err([]string{"a is required"})
	require.Error(t, err)
	assert.True(t, model.HasCode(err, model.ErrCodeValidation))
}

func TestIsID(t *testing.T) {
	assert.True(t, IsID(validID))
	assert.False(t, IsID("urn:uuid:"+validID))
	assert.False(t, IsID("{"+validID+"}"))
	assert.False(t, IsID("507f1f77bcf86cd799439011"))
	assert.False(t, IsID(""))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in       string
		want     time.Time
		dateOnly bool
	}{
		{"2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), false},
		{"2024-03-01T10:30:00+09:00", time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC), false},
		{"2024-03-01T10:30:00.250Z", time.Date(2024, 3, 1, 10, 30, 0, 250_000_000, time.UTC), false},
		{"2024-03-01T10:30", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), false},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, dateOnly, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			assert.Equal(t, tt.dateOnly, dateOnly)
		})
	}

	_, _, err := ParseDate("03/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestEndOfDay(t *testing.T) {
	got := EndOfDay(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 999_999_999, time.UTC), got)
}
