package repotest

import (
	"context"
	"fmt"
	"sort"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/repository"
)

func newRepositories(d *db) repository.Repositories {
	return repository.Repositories{
		Users:        &userRepo{d},
		Semesters:    &semesterRepo{d},
		Classes:      &classRepo{d},
		Assignments:  &assignmentRepo{d},
		Sessions:     &sessionRepo{d},
		Studies:      &studyRepo{d},
		Distractions: &distractionRepo{d},
		Works:        &workRepo{d},
	}
}

func duplicate(constraint string) error {
	return fmt.Errorf("insert: %w (%s)", repository.ErrDuplicate, constraint)
}

func referenced(table, id string) error {
	return fmt.Errorf("delete %s %s: %w", table, id, ErrForeignKey)
}

func missingParent(table, id string) error {
	return fmt.Errorf("%s %s does not exist: %w", table, id, ErrForeignKey)
}

// --- users ---

type userRepo struct{ d *db }

func (r *userRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if u, ok := r.d.t.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *userRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, u := range r.d.t.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Create(_ context.Context, u *model.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Users.Create"); err != nil {
		return err
	}
	for _, existing := range r.d.t.users {
		if existing.Username == u.Username {
			return duplicate("users_username_key")
		}
	}
	r.d.t.users[u.ID] = *u
	return nil
}

func (r *userRepo) UpdateProfile(_ context.Context, u *model.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.t.users[u.ID]
	if !ok {
		return nil
	}
	existing.StartYear = u.StartYear
	existing.School = u.School
	existing.UpdatedAt = u.UpdatedAt
	r.d.t.users[u.ID] = existing
	return nil
}

func (r *userRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Users.DeleteByID"); err != nil {
		return 0, err
	}
	if _, ok := r.d.t.users[id]; !ok {
		return 0, nil
	}
	for _, s := range r.d.t.semesters {
		if s.UserID == id {
			return 0, referenced("users", id)
		}
	}
	for _, s := range r.d.t.sessions {
		if s.UserID == id {
			return 0, referenced("users", id)
		}
	}
	delete(r.d.t.users, id)
	return 1, nil
}

// --- semesters ---

type semesterRepo struct{ d *db }

func (r *semesterRepo) FindByID(_ context.Context, id string) (*model.Semester, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if s, ok := r.d.t.semesters[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *semesterRepo) ListByUserID(_ context.Context, userID string) ([]*model.Semester, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []*model.Semester{}
	for _, s := range r.d.t.semesters {
		if s.UserID == userID {
			out = append(out, &s)
		}
	}
	seasonRank := map[model.Season]int{model.SeasonWinter: 0, model.SeasonFall: 1, model.SeasonSummer: 2, model.SeasonSpring: 3}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return seasonRank[out[i].Season] < seasonRank[out[j].Season]
	})
	return out, nil
}

func (r *semesterRepo) ListIDsByUserID(_ context.Context, userID string) ([]string, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	ids := []string{}
	for _, s := range r.d.t.semesters {
		if s.UserID == userID {
			ids = append(ids, s.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *semesterRepo) conflicts(s *model.Semester) bool {
	for _, existing := range r.d.t.semesters {
		if existing.ID != s.ID && existing.UserID == s.UserID && existing.Season == s.Season && existing.Year == s.Year {
			return true
		}
	}
	return false
}

func (r *semesterRepo) Create(_ context.Context, s *model.Semester) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Semesters.Create"); err != nil {
		return err
	}
	if _, ok := r.d.t.users[s.UserID]; !ok {
		return missingParent("users", s.UserID)
	}
	if r.conflicts(s) {
		return duplicate("semesters_user_season_year_key")
	}
	r.d.t.semesters[s.ID] = *s
	return nil
}

func (r *semesterRepo) Update(_ context.Context, s *model.Semester) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.t.semesters[s.ID]
	if !ok {
		return nil
	}
	existing.Season, existing.Year, existing.UpdatedAt = s.Season, s.Year, s.UpdatedAt
	if r.conflicts(&existing) {
		return duplicate("semesters_user_season_year_key")
	}
	r.d.t.semesters[s.ID] = existing
	return nil
}

func (r *semesterRepo) deletable(id string) error {
	for _, c := range r.d.t.classes {
		if c.SemesterID == id {
			return referenced("semesters", id)
		}
	}
	return nil
}

func (r *semesterRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Semesters.DeleteByID"); err != nil {
		return 0, err
	}
	if _, ok := r.d.t.semesters[id]; !ok {
		return 0, nil
	}
	if err := r.deletable(id); err != nil {
		return 0, err
	}
	delete(r.d.t.semesters, id)
	return 1, nil
}

func (r *semesterRepo) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var n int64
	for id, s := range r.d.t.semesters {
		if s.UserID != userID {
			continue
		}
		if err := r.deletable(id); err != nil {
			return n, err
		}
		delete(r.d.t.semesters, id)
		n++
	}
	return n, nil
}

// --- classes ---

type classRepo struct{ d *db }

func (r *classRepo) FindByID(_ context.Context, id string) (*model.Class, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if c, ok := r.d.t.classes[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *classRepo) ListBySemesterIDs(_ context.Context, semesterIDs []string) ([]*model.Class, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	set := idSet(semesterIDs)
	out := []*model.Class{}
	for _, c := range r.d.t.classes {
		if set[c.SemesterID] {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassCode < out[j].ClassCode })
	return out, nil
}

func (r *classRepo) ListIDsBySemesterIDs(ctx context.Context, semesterIDs []string) ([]string, error) {
	classes, _ := r.ListBySemesterIDs(ctx, semesterIDs)
	ids := make([]string, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (r *classRepo) conflicts(c *model.Class) bool {
	for _, existing := range r.d.t.classes {
		if existing.ID != c.ID && existing.SemesterID == c.SemesterID && existing.ClassCode == c.ClassCode {
			return true
		}
	}
	return false
}

func (r *classRepo) Create(_ context.Context, c *model.Class) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Classes.Create"); err != nil {
		return err
	}
	if _, ok := r.d.t.semesters[c.SemesterID]; !ok {
		return missingParent("semesters", c.SemesterID)
	}
	if r.conflicts(c) {
		return duplicate("classes_semester_code_key")
	}
	r.d.t.classes[c.ID] = *c
	return nil
}

func (r *classRepo) Update(_ context.Context, c *model.Class) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.t.classes[c.ID]
	if !ok {
		return nil
	}
	existing.ClassCode, existing.Professor, existing.Grade, existing.UpdatedAt = c.ClassCode, c.Professor, c.Grade, c.UpdatedAt
	if r.conflicts(&existing) {
		return duplicate("classes_semester_code_key")
	}
	r.d.t.classes[c.ID] = existing
	return nil
}

func (r *classRepo) deletable(id string) error {
	for _, a := range r.d.t.assignments {
		if a.ClassID == id {
			return referenced("classes", id)
		}
	}
	return nil
}

func (r *classRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Classes.DeleteByID"); err != nil {
		return 0, err
	}
	if _, ok := r.d.t.classes[id]; !ok {
		return 0, nil
	}
	if err := r.deletable(id); err != nil {
		return 0, err
	}
	delete(r.d.t.classes, id)
	return 1, nil
}

func (r *classRepo) DeleteBySemesterIDs(_ context.Context, semesterIDs []string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	set := idSet(semesterIDs)
	var n int64
	for id, c := range r.d.t.classes {
		if !set[c.SemesterID] {
			continue
		}
		if err := r.deletable(id); err != nil {
			return n, err
		}
		delete(r.d.t.classes, id)
		n++
	}
	return n, nil
}

// --- assignments ---

type assignmentRepo struct{ d *db }

func (r *assignmentRepo) FindByID(_ context.Context, id string) (*model.Assignment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if a, ok := r.d.t.assignments[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (r *assignmentRepo) list(classIDs []string) []*model.Assignment {
	set := idSet(classIDs)
	out := []*model.Assignment{}
	for _, a := range r.d.t.assignments {
		if set[a.ClassID] {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return createdBefore(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (r *assignmentRepo) ListByClassIDs(_ context.Context, classIDs []string) ([]*model.Assignment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return r.list(classIDs), nil
}

func (r *assignmentRepo) ListWithClassByClassIDs(_ context.Context, classIDs []string) ([]*model.AssignmentWithClass, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []*model.AssignmentWithClass{}
	for _, a := range r.list(classIDs) {
		out = append(out, &model.AssignmentWithClass{Assignment: *a, Class: r.d.t.classes[a.ClassID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Class.ClassCode < out[j].Class.ClassCode })
	return out, nil
}

func (r *assignmentRepo) ListIDsByClassIDs(_ context.Context, classIDs []string) ([]string, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	ids := []string{}
	for _, a := range r.list(classIDs) {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (r *assignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Assignments.Create"); err != nil {
		return err
	}
	if _, ok := r.d.t.classes[a.ClassID]; !ok {
		return missingParent("classes", a.ClassID)
	}
	r.d.t.assignments[a.ID] = *a
	return nil
}

func (r *assignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.t.assignments[a.ID]
	if !ok {
		return nil
	}
	if _, ok := r.d.t.classes[a.ClassID]; !ok {
		return missingParent("classes", a.ClassID)
	}
	existing.ClassID, existing.Title, existing.UpdatedAt = a.ClassID, a.Title, a.UpdatedAt
	r.d.t.assignments[a.ID] = existing
	return nil
}

func (r *assignmentRepo) deletable(id string) error {
	for _, w := range r.d.t.works {
		if w.AssignmentID == id {
			return referenced("assignments", id)
		}
	}
	return nil
}

func (r *assignmentRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Assignments.DeleteByID"); err != nil {
		return 0, err
	}
	if _, ok := r.d.t.assignments[id]; !ok {
		return 0, nil
	}
	if err := r.deletable(id); err != nil {
		return 0, err
	}
	delete(r.d.t.assignments, id)
	return 1, nil
}

func (r *assignmentRepo) DeleteByClassIDs(_ context.Context, classIDs []string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	set := idSet(classIDs)
	var n int64
	for id, a := range r.d.t.assignments {
		if !set[a.ClassID] {
			continue
		}
		if err := r.deletable(id); err != nil {
			return n, err
		}
		delete(r.d.t.assignments, id)
		n++
	}
	return n, nil
}

// --- study sessions ---

type sessionRepo struct{ d *db }

func (r *sessionRepo) FindByID(_ context.Context, id string) (*model.StudySession, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if s, ok := r.d.t.sessions[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *sessionRepo) ListByUserID(_ context.Context, userID string) ([]*model.StudySession, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	asc := sortedSessions(r.d.t.sessions, userID)
	out := make([]*model.StudySession, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		out = append(out, &asc[i])
	}
	return out, nil
}

func (r *sessionRepo) ListIDsByUserID(_ context.Context, userID string) ([]string, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	ids := []string{}
	for _, s := range sortedSessions(r.d.t.sessions, userID) {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func (r *sessionRepo) Create(_ context.Context, s *model.StudySession) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Sessions.Create"); err != nil {
		return err
	}
	if _, ok := r.d.t.users[s.UserID]; !ok {
		return missingParent("users", s.UserID)
	}
	r.d.t.sessions[s.ID] = *s
	return nil
}

func (r *sessionRepo) Update(_ context.Context, s *model.StudySession) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.t.sessions[s.ID]
	if !ok {
		return nil
	}
	existing.Title, existing.Datetime, existing.UpdatedAt = s.Title, s.Datetime, s.UpdatedAt
	r.d.t.sessions[s.ID] = existing
	return nil
}

func (r *sessionRepo) deletable(id string) error {
	for _, s := range r.d.t.studies {
		if s.SessionID == id {
			return referenced("study_sessions", id)
		}
	}
	for _, d := range r.d.t.distractions {
		if d.SessionID == id {
			return referenced("study_sessions", id)
		}
	}
	for _, w := range r.d.t.works {
		if w.SessionID == id {
			return referenced("study_sessions", id)
		}
	}
	return nil
}

func (r *sessionRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Sessions.DeleteByID"); err != nil {
		return 0, err
	}
	if _, ok := r.d.t.sessions[id]; !ok {
		return 0, nil
	}
	if err := r.deletable(id); err != nil {
		return 0, err
	}
	delete(r.d.t.sessions, id)
	return 1, nil
}

func (r *sessionRepo) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var n int64
	for id, s := range r.d.t.sessions {
		if s.UserID != userID {
			continue
		}
		if err := r.deletable(id); err != nil {
			return n, err
		}
		delete(r.d.t.sessions, id)
		n++
	}
	return n, nil
}

// --- studies ---

type studyRepo struct{ d *db }

func (r *studyRepo) FindByID(_ context.Context, id string) (*model.Study, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if s, ok := r.d.t.studies[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *studyRepo) ListBySessionID(_ context.Context, sessionID string) ([]*model.Study, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []*model.Study{}
	for _, s := range sortedValues(r.d.t.studies, func(a, b model.Study) bool {
		return createdBefore(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}) {
		if s.SessionID == sessionID {
			out = append(out, &s)
		}
	}
	return out, nil
}

func (r *studyRepo) Create(_ context.Context, s *model.Study) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Studies.Create"); err != nil {
		return err
	}
	if _, ok := r.d.t.sessions[s.SessionID]; !ok {
		return missingParent("study_sessions", s.SessionID)
	}
	r.d.t.studies[s.ID] = *s
	return nil
}

func (r *studyRepo) Update(_ context.Context, s *model.Study) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.t.studies[s.ID]
	if !ok {
		return nil
	}
	existing.What, existing.Understanding, existing.Time, existing.UpdatedAt = s.What, s.Understanding, s.Time, s.UpdatedAt
	r.d.t.studies[s.ID] = existing
	return nil
}

func (r *studyRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.t.studies[id]; !ok {
		return 0, nil
	}
	delete(r.d.t.studies, id)
	return 1, nil
}

func (r *studyRepo) DeleteBySessionIDs(_ context.Context, sessionIDs []string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Studies.DeleteBySessionIDs"); err != nil {
		return 0, err
	}
	set := idSet(sessionIDs)
	var n int64
	for id, s := range r.d.t.studies {
		if set[s.SessionID] {
			delete(r.d.t.studies, id)
			n++
		}
	}
	return n, nil
}

// --- distractions ---

type distractionRepo struct{ d *db }

func (r *distractionRepo) FindByID(_ context.Context, id string) (*model.Distraction, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if d, ok := r.d.t.distractions[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (r *distractionRepo) ListBySessionID(_ context.Context, sessionID string) ([]*model.Distraction, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []*model.Distraction{}
	for _, d := range sortedValues(r.d.t.distractions, func(a, b model.Distraction) bool {
		return createdBefore(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}) {
		if d.SessionID == sessionID {
			out = append(out, &d)
		}
	}
	return out, nil
}

func (r *distractionRepo) DistinctTypesBySessionIDs(_ context.Context, sessionIDs []string) ([]string, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	set := idSet(sessionIDs)
	seen := map[string]bool{}
	types := []string{}
	for _, d := range r.d.t.distractions {
		if set[d.SessionID] && !seen[d.Type] {
			seen[d.Type] = true
			types = append(types, d.Type)
		}
	}
	sort.Strings(types)
	return types, nil
}

func (r *distractionRepo) Create(_ context.Context, d *model.Distraction) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Distractions.Create"); err != nil {
		return err
	}
	if _, ok := r.d.t.sessions[d.SessionID]; !ok {
		return missingParent("study_sessions", d.SessionID)
	}
	r.d.t.distractions[d.ID] = *d
	return nil
}

func (r *distractionRepo) Update(_ context.Context, d *model.Distraction) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.t.distractions[d.ID]
	if !ok {
		return nil
	}
	existing.Type, existing.TimeTaken, existing.UpdatedAt = d.Type, d.TimeTaken, d.UpdatedAt
	r.d.t.distractions[d.ID] = existing
	return nil
}

func (r *distractionRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.t.distractions[id]; !ok {
		return 0, nil
	}
	delete(r.d.t.distractions, id)
	return 1, nil
}

func (r *distractionRepo) DeleteBySessionIDs(_ context.Context, sessionIDs []string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	set := idSet(sessionIDs)
	var n int64
	for id, d := range r.d.t.distractions {
		if set[d.SessionID] {
			delete(r.d.t.distractions, id)
			n++
		}
	}
	return n, nil
}

// --- assignment works ---

type workRepo struct{ d *db }

func (r *workRepo) FindByID(_ context.Context, id string) (*model.AssignmentWork, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if w, ok := r.d.t.works[id]; ok {
		return &w, nil
	}
	return nil, nil
}

func (r *workRepo) FindWithAssignmentByID(_ context.Context, id string) (*model.AssignmentWorkWithAssignment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	w, ok := r.d.t.works[id]
	if !ok {
		return nil, nil
	}
	return &model.AssignmentWorkWithAssignment{AssignmentWork: w, Assignment: r.d.t.assignments[w.AssignmentID]}, nil
}

func (r *workRepo) ListWithAssignmentBySessionID(_ context.Context, sessionID string) ([]*model.AssignmentWorkWithAssignment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []*model.AssignmentWorkWithAssignment{}
	for _, w := range sortedValues(r.d.t.works, func(a, b model.AssignmentWork) bool {
		return createdBefore(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}) {
		if w.SessionID == sessionID {
			out = append(out, &model.AssignmentWorkWithAssignment{AssignmentWork: w, Assignment: r.d.t.assignments[w.AssignmentID]})
		}
	}
	return out, nil
}

func (r *workRepo) Create(_ context.Context, w *model.AssignmentWork) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.fail("Works.Create"); err != nil {
		return err
	}
	if _, ok := r.d.t.sessions[w.SessionID]; !ok {
		return missingParent("study_sessions", w.SessionID)
	}
	if _, ok := r.d.t.assignments[w.AssignmentID]; !ok {
		return missingParent("assignments", w.AssignmentID)
	}
	for _, existing := range r.d.t.works {
		if existing.AssignmentID == w.AssignmentID && existing.SessionID == w.SessionID {
			return duplicate("assignment_works_assignment_session_key")
		}
	}
	r.d.t.works[w.ID] = *w
	return nil
}

func (r *workRepo) Update(_ context.Context, w *model.AssignmentWork) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.t.works[w.ID]
	if !ok {
		return nil
	}
	existing.Time, existing.UpdatedAt = w.Time, w.UpdatedAt
	r.d.t.works[w.ID] = existing
	return nil
}

func (r *workRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.t.works[id]; !ok {
		return 0, nil
	}
	delete(r.d.t.works, id)
	return 1, nil
}

func (r *workRepo) DeleteBySessionIDs(_ context.Context, sessionIDs []string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	set := idSet(sessionIDs)
	var n int64
	for id, w := range r.d.t.works {
		if set[w.SessionID] {
			delete(r.d.t.works, id)
			n++
		}
	}
	return n, nil
}

func (r *workRepo) DeleteByAssignmentIDs(_ context.Context, assignmentIDs []string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	set := idSet(assignmentIDs)
	var n int64
	for id, w := range r.d.t.works {
		if set[w.AssignmentID] {
			delete(r.d.t.works, id)
			n++
		}
	}
	return n, nil
}
