package records

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/studytrack/internal/model"
)

const (
	classA      = "11111111-1111-4111-8111-111111111111"
	classB      = "22222222-2222-4222-8222-222222222222"
	assignmentX = "33333333-3333-4333-8333-333333333333"
	assignmentY = "44444444-4444-4444-8444-444444444444"
)

func flags(class, assignment, distraction, dates bool) Request {
	return Request{
		FilterClass:           &class,
		FilterAssignment:      &assignment,
		FilterDistractionType: &distraction,
		FilterDates:           &dates,
	}
}

func strPtr(s string) *string { return &s }

func work(assignmentID, classID string, minutes int) model.WorkRecord {
	return model.WorkRecord{
		Time: minutes,
		Assignment: model.AssignmentRef{
			ID:    assignmentID,
			Class: model.ClassRef{ID: classID},
		},
	}
}

func TestRefList_AcceptsStringsAndObjects(t *testing.T) {
	var req Request
	body := `{"selectedClasses": ["` + classA + `", {"_id": "` + classB + `", "classId": "CS180"}, 42]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, RefList{classA, classB, ""}, req.SelectedClasses)
}

func TestCompile_RequiresFlags(t *testing.T) {
	_, err := Compile(Request{})
	require.Error(t, err)

	apiErr, ok := err.(*model.APIError)
	require.True(t, ok)
	assert.Equal(t, model.ErrCodeValidation, apiErr.Code)
	assert.Equal(t, []string{
		"filterClass is required",
		"filterAssignment is required",
		"filterDistractionType is required",
		"filterDates is required",
	}, apiErr.Errors)
}

func TestCompile_RejectsOperatorInjection(t *testing.T) {
	req := flags(false, false, true, false)
	req.SelectedDistractionTypes = []string{"$where"}

	_, err := Compile(req)
	require.Error(t, err)
	assert.True(t, model.HasCode(err, model.ErrCodeValidation))
}

func TestCompile_ValidatesSelectionsEvenWhenFlagOff(t *testing.T) {
	req := flags(false, false, false, false)
	req.SelectedClasses = RefList{"{$ne: null}"}

	_, err := Compile(req)
	assert.True(t, model.HasCode(err, model.ErrCodeValidation))
}

func TestCompile_RejectsInvertedDateRange(t *testing.T) {
	req := flags(false, false, false, true)
	req.StartDate = strPtr("2024-03-10")
	req.EndDate = strPtr("2024-03-01")

	_, err := Compile(req)
	require.Error(t, err)
	apiErr := err.(*model.APIError)
	assert.Equal(t, []string{"startDate must be before endDate"}, apiErr.Errors)
}

func TestCompile_BlankDatesAreAbsent(t *testing.T) {
	req := flags(false, false, false, true)
	req.StartDate = strPtr("")
	req.EndDate = strPtr("")

	f, err := Compile(req)
	require.NoError(t, err)
	assert.Nil(t, f.From)
	assert.Nil(t, f.To)
}

func TestCompile_FlagWithEmptySelectionIsNoFilter(t *testing.T) {
	f, err := Compile(flags(true, true, true, false))
	require.NoError(t, err)
	assert.Nil(t, f.ClassIDs)
	assert.Nil(t, f.AssignmentIDs)
	assert.Nil(t, f.DistractionTypes)
}

func TestCompile_FlagOffIgnoresSelection(t *testing.T) {
	req := flags(false, false, false, false)
	req.SelectedClasses = RefList{classA}
	req.StartDate = strPtr("2024-03-01")

	f, err := Compile(req)
	require.NoError(t, err)
	assert.True(t, f.Predicate()(&model.SessionRecord{}))
}

func TestPredicate_DateOnlyEndIncludesWholeDay(t *testing.T) {
	req := flags(false, false, false, true)
	req.StartDate = strPtr("2024-03-01")
	req.EndDate = strPtr("2024-03-01")

	f, err := Compile(req)
	require.NoError(t, err)
	match := f.Predicate()

	assert.True(t, match(&model.SessionRecord{Datetime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}))
	assert.True(t, match(&model.SessionRecord{Datetime: time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)}))
	assert.False(t, match(&model.SessionRecord{Datetime: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)}))
	assert.False(t, match(&model.SessionRecord{Datetime: time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)}))
}

func TestPredicate_SingleBoundIsHalfOpen(t *testing.T) {
	req := flags(false, false, false, true)
	req.StartDate = strPtr("2024-03-01")

	f, err := Compile(req)
	require.NoError(t, err)
	match := f.Predicate()

	assert.True(t, match(&model.SessionRecord{Datetime: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}))
	assert.False(t, match(&model.SessionRecord{Datetime: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}))
}

func TestPredicate_ClassAndAssignmentAreIndependent(t *testing.T) {
	req := flags(true, true, false, false)
	req.SelectedClasses = RefList{classA}
	req.SelectedAssignments = RefList{assignmentY}

	f, err := Compile(req)
	require.NoError(t, err)
	match := f.Predicate()

	// 授業条件と課題条件を別々の課題作業が満たす
	split := &model.SessionRecord{Works: []model.WorkRecord{
		work(assignmentX, classA, 10),
		work(assignmentY, classB, 20),
	}}
	assert.True(t, match(split))

	onlyClass := &model.SessionRecord{Works: []model.WorkRecord{work(assignmentX, classA, 10)}}
	assert.False(t, match(onlyClass))

	noWorks := &model.SessionRecord{}
	assert.False(t, match(noWorks))
}

func TestPredicate_DistractionTypeMatchesAny(t *testing.T) {
	req := flags(false, false, true, false)
	req.SelectedDistractionTypes = []string{"phone"}

	f, err := Compile(req)
	require.NoError(t, err)
	match := f.Predicate()

	assert.True(t, match(&model.SessionRecord{Distractions: []model.DistractionRecord{
		{Type: "snack", TimeTaken: 5},
		{Type: "phone", TimeTaken: 3},
	}}))
	assert.False(t, match(&model.SessionRecord{Distractions: []model.DistractionRecord{{Type: "snack"}}}))
}

func TestAll_Empty(t *testing.T) {
	assert.True(t, All()(&model.SessionRecord{}))
}
