package studylog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/repository/repotest"
	"github.com/hitoshi/studytrack/internal/security"
)

func strPtr(s string) *string { return &s }

func numPtr(n float64) *float64 { return &n }

type fixture struct {
	store *repotest.Store
	svc   *Service
	alice string
	bob   string
	// aliceAssignment / bobAssignment は各ユーザーの授業に属する課題
	aliceAssignment string
	bobAssignment   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	f := &fixture{
		store: store,
		svc:   NewService(store, security.NewSanitizer()),
		alice: uuid.NewString(),
		bob:   uuid.NewString(),
	}
	f.aliceAssignment = seedAssignment(t, store, f.alice, "alice")
	f.bobAssignment = seedAssignment(t, store, f.bob, "bob")
	return f
}

func seedAssignment(t *testing.T, store *repotest.Store, userID, name string) string {
	t.Helper()
	ctx := context.Background()
	repos := store.Repos()
	semesterID, classID, assignmentID := uuid.NewString(), uuid.NewString(), uuid.NewString()
	require.NoError(t, repos.Users.Create(ctx, &model.User{ID: userID, Username: name}))
	require.NoError(t, repos.Semesters.Create(ctx, &model.Semester{ID: semesterID, UserID: userID, Season: model.SeasonFall, Year: 2024}))
	require.NoError(t, repos.Classes.Create(ctx, &model.Class{ID: classID, SemesterID: semesterID, ClassCode: "CS180"}))
	require.NoError(t, repos.Assignments.Create(ctx, &model.Assignment{ID: assignmentID, ClassID: classID, Title: "HW1"}))
	return assignmentID
}

func (f *fixture) session(t *testing.T, userID, title, datetime string) *model.StudySession {
	t.Helper()
	in := SessionInput{Title: strPtr(title)}
	if datetime != "" {
		in.Datetime = strPtr(datetime)
	}
	s, err := f.svc.CreateSession(context.Background(), userID, in)
	require.NoError(t, err)
	return s
}

func TestSessions_CreateAndListNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.session(t, f.alice, "morning", "2024-03-01T09:00")
	f.session(t, f.alice, "evening", "2024-03-02T19:00:00Z")
	f.session(t, f.bob, "bob's", "2024-03-03")

	list, err := f.svc.ListSessions(context.Background(), f.alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "evening", list[0].Title)
	assert.Equal(t, "morning", list[1].Title)
	assert.True(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).Equal(list[1].Datetime))
}

func TestSessions_DatetimeDefaultsToNow(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	s := f.session(t, f.alice, "now", "")
	assert.True(t, fixed.Equal(s.Datetime))
}

func TestSessions_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSession(ctx, f.alice, SessionInput{})
	assert.True(t, model.HasCode(err, model.ErrCodeValidation))

	_, err = f.svc.CreateSession(ctx, f.alice, SessionInput{Title: strPtr("x"), Datetime: strPtr("tomorrow")})
	assert.True(t, model.HasCode(err, model.ErrCodeValidation))

	_, err = f.svc.CreateSession(ctx, f.alice, SessionInput{Title: strPtr("<p></p>")})
	assert.True(t, model.HasCode(err, model.ErrCodeValidation))
}

func TestSessions_UpdateAndDeleteOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, f.alice, "morning", "2024-03-01T09:00")

	updated, err := f.svc.UpdateSession(ctx, f.alice, s.ID, SessionInput{Title: strPtr("late morning")})
	require.NoError(t, err)
	assert.Equal(t, "late morning", updated.Title)
	assert.True(t, s.Datetime.Equal(updated.Datetime))

	_, err = f.svc.UpdateSession(ctx, f.bob, s.ID, SessionInput{Title: strPtr("mine now")})
	assert.True(t, model.HasCode(err, model.ErrCodeNotFound))

	err = f.svc.DeleteSession(ctx, f.bob, s.ID)
	assert.True(t, model.HasCode(err, model.ErrCodeNotFound))
}

func TestSessions_DeleteCascadesChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, f.alice, "morning", "")

	st, err := f.svc.CreateStudy(ctx, f.alice, StudyInput{SessionID: strPtr(s.ID), What: strPtr("calc"), Understanding: numPtr(5), Time: numPtr(30)})
	require.NoError(t, err)
	d, err := f.svc.CreateDistraction(ctx, f.alice, DistractionInput{SessionID: strPtr(s.ID), Type: strPtr("phone"), TimeTaken: numPtr(5)})
	require.NoError(t, err)
	w, err := f.svc.CreateWork(ctx, f.alice, WorkInput{SessionID: strPtr(s.ID), AssignmentID: strPtr(f.aliceAssignment), Time: numPtr(20)})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSession(ctx, f.alice, s.ID))

	repos := f.store.Repos()
	gotStudy, _ := repos.Studies.FindByID(ctx, st.ID)
	gotDistraction, _ := repos.Distractions.FindByID(ctx, d.ID)
	gotWork, _ := repos.Works.FindByID(ctx, w.ID)
	assert.Nil(t, gotStudy)
	assert.Nil(t, gotDistraction)
	assert.Nil(t, gotWork)

	gotAssignment, _ := repos.Assignments.FindByID(ctx, f.aliceAssignment)
	assert.NotNil(t, gotAssignment)
}

func TestStudies_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, f.alice, "calc", "")

	created, err := f.svc.CreateStudy(ctx, f.alice, StudyInput{
		SessionID: strPtr(s.ID), What: strPtr("derivatives"), Understanding: numPtr(4), Time: numPtr(45),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	list, err := f.svc.ListStudies(ctx, f.alice, s.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "derivatives", list[0].What)
	assert.Equal(t, 4, list[0].Understanding)
	assert.Equal(t, 45, list[0].Time)
}

func TestStudies_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, f.alice, "calc", "")

	tests := []struct {
		name string
		in   StudyInput
	}{
		{"セッションなし", StudyInput{What: strPtr("x"), Understanding: numPtr(1), Time: numPtr(1)}},
		{"理解度が範囲外", StudyInput{SessionID: strPtr(s.ID), What: strPtr("x"), Understanding: numPtr(11), Time: numPtr(1)}},
		{"時間が1日超", StudyInput{SessionID: strPtr(s.ID), What: strPtr("x"), Understanding: numPtr(1), Time: numPtr(1441)}},
		{"負の時間", StudyInput{SessionID: strPtr(s.ID), What: strPtr("x"), Understanding: numPtr(1), Time: numPtr(-1)}},
		{"空白のみ", StudyInput{SessionID: strPtr(s.ID), What: strPtr("  "), Understanding: numPtr(1), Time: numPtr(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateStudy(ctx, f.alice, tt.in)
			assert.True(t, model.HasCode(err, model.ErrCodeValidation), "got %v", err)
		})
	}
}

func TestStudies_UpdateDeleteAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, f.alice, "calc", "")
	st, err := f.svc.CreateStudy(ctx, f.alice, StudyInput{SessionID: strPtr(s.ID), What: strPtr("limits"), Understanding: numPtr(3), Time: numPtr(20)})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStudy(ctx, f.alice, st.ID, StudyInput{Understanding: numPtr(8)})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Understanding)
	assert.Equal(t, "limits", updated.What)

	_, err = f.svc.UpdateStudy(ctx, f.bob, st.ID, StudyInput{Time: numPtr(1)})
	assert.True(t, model.HasCode(err, model.ErrCodeForbidden))

	err = f.svc.DeleteStudy(ctx, f.bob, st.ID)
	assert.True(t, model.HasCode(err, model.ErrCodeForbidden))

	require.NoError(t, f.svc.DeleteStudy(ctx, f.alice, st.ID))
	err = f.svc.DeleteStudy(ctx, f.alice, st.ID)
	assert.True(t, model.HasCode(err, model.ErrCodeNotFound))
}

func TestDistractions_RejectOperatorPrefix(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, f.alice, "calc", "")

	_, err := f.svc.CreateDistraction(context.Background(), f.alice, DistractionInput{
		SessionID: strPtr(s.ID), Type: strPtr("$where"), TimeTaken: numPtr(5),
	})
	assert.True(t, model.HasCode(err, model.ErrCodeValidation))
}

func TestDistractions_DistinctTypesAreScopedToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s1 := f.session(t, f.alice, "one", "")
	s2 := f.session(t, f.alice, "two", "")
	sb := f.session(t, f.bob, "bob", "")

	for _, in := range []struct {
		session, typ string
	}{{s1.ID, "phone"}, {s1.ID, "snack"}, {s2.ID, "phone"}} {
		_, err := f.svc.CreateDistraction(ctx, f.alice, DistractionInput{SessionID: strPtr(in.session), Type: strPtr(in.typ), TimeTaken: numPtr(3)})
		require.NoError(t, err)
	}
	_, err := f.svc.CreateDistraction(ctx, f.bob, DistractionInput{SessionID: strPtr(sb.ID), Type: strPtr("tv"), TimeTaken: numPtr(3)})
	require.NoError(t, err)

	types, err := f.svc.ListMyDistractionTypes(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"phone", "snack"}, types)

	none, err := f.svc.ListMyDistractionTypes(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDistractions_CreateOnOtherUsersSession(t *testing.T) {
	f := newFixture(t)
	sb := f.session(t, f.bob, "bob", "")

	_, err := f.svc.CreateDistraction(context.Background(), f.alice, DistractionInput{
		SessionID: strPtr(sb.ID), Type: strPtr("phone"), TimeTaken: numPtr(3),
	})
	assert.True(t, model.HasCode(err, model.ErrCodeNotFound))
}

func TestWork_CreateChecksInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.session(t, f.alice, "mine", "")
	bobs := f.session(t, f.bob, "bob", "")

	// 他ユーザーのセッション → NOT_FOUND
	_, err := f.svc.CreateWork(ctx, f.alice, WorkInput{SessionID: strPtr(bobs.ID), AssignmentID: strPtr(f.aliceAssignment), Time: numPtr(10)})
	assert.True(t, model.HasCode(err, model.ErrCodeNotFound))

	// 存在しない課題 → NOT_FOUND
	_, err = f.svc.CreateWork(ctx, f.alice, WorkInput{SessionID: strPtr(mine.ID), AssignmentID: strPtr(uuid.NewString()), Time: numPtr(10)})
	assert.True(t, model.HasCode(err, model.ErrCodeNotFound))

	// 他ユーザーの課題 → FORBIDDEN
	_, err = f.svc.CreateWork(ctx, f.alice, WorkInput{SessionID: strPtr(mine.ID), AssignmentID: strPtr(f.bobAssignment), Time: numPtr(10)})
	assert.True(t, model.HasCode(err, model.ErrCodeForbidden))
}

func TestWork_DuplicateIsConflictAndOriginalUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, f.alice, "mine", "")

	first, err := f.svc.CreateWork(ctx, f.alice, WorkInput{SessionID: strPtr(s.ID), AssignmentID: strPtr(f.aliceAssignment), Time: numPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, "HW1", first.Assignment.Title)

	_, err = f.svc.CreateWork(ctx, f.alice, WorkInput{SessionID: strPtr(s.ID), AssignmentID: strPtr(f.aliceAssignment), Time: numPtr(99)})
	assert.True(t, model.HasCode(err, model.ErrCodeConflict))

	works, err := f.svc.ListWorks(ctx, f.alice, s.ID)
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, 10, works[0].Time)
}

func TestWork_UpdateTimeAndAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, f.alice, "mine", "")
	w, err := f.svc.CreateWork(ctx, f.alice, WorkInput{SessionID: strPtr(s.ID), AssignmentID: strPtr(f.aliceAssignment), Time: numPtr(10)})
	require.NoError(t, err)

	updated, err := f.svc.UpdateWork(ctx, f.alice, w.ID, WorkInput{Time: numPtr(25)})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Time)
	assert.Equal(t, f.aliceAssignment, updated.Assignment.ID)

	_, err = f.svc.UpdateWork(ctx, f.alice, w.ID, WorkInput{})
	assert.True(t, model.HasCode(err, model.ErrCodeValidation))

	_, err = f.svc.UpdateWork(ctx, f.bob, w.ID, WorkInput{Time: numPtr(1)})
	assert.True(t, model.HasCode(err, model.ErrCodeForbidden))

	require.NoError(t, f.svc.DeleteWork(ctx, f.alice, w.ID))
	works, err := f.svc.ListWorks(ctx, f.alice, s.ID)
	require.NoError(t, err)
	assert.Empty(t, works)
}
