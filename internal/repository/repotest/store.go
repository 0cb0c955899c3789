// Package repotest はテスト用のインメモリStoreを提供する。
//
// PostgreSQLスキーマと同じ一意制約と外部キー（ON DELETE NO ACTION）を検査するため、
// 親を子より先に削除しようとするとエラーになる。
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/repository"
)

// ErrForeignKey は参照されている行を削除しようとした、または存在しない親を参照した場合のエラー。
var ErrForeignKey = errors.New("foreign key violation")

type tables struct {
	users        map[string]model.User
	semesters    map[string]model.Semester
	classes      map[string]model.Class
	assignments  map[string]model.Assignment
	sessions     map[string]model.StudySession
	studies      map[string]model.Study
	distractions map[string]model.Distraction
	works        map[string]model.AssignmentWork
}

func newTables() *tables {
	return &tables{
		users:        map[string]model.User{},
		semesters:    map[string]model.Semester{},
		classes:      map[string]model.Class{},
		assignments:  map[string]model.Assignment{},
		sessions:     map[string]model.StudySession{},
		studies:      map[string]model.Study{},
		distractions: map[string]model.Distraction{},
		works:        map[string]model.AssignmentWork{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t *tables) clone() *tables {
	return &tables{
		users:        cloneMap(t.users),
		semesters:    cloneMap(t.semesters),
		classes:      cloneMap(t.classes),
		assignments:  cloneMap(t.assignments),
		sessions:     cloneMap(t.sessions),
		studies:      cloneMap(t.studies),
		distractions: cloneMap(t.distractions),
		works:        cloneMap(t.works),
	}
}

// db はロック付きのテーブル集合。リポジトリ実装が共有する。
type db struct {
	mu       sync.RWMutex
	t        *tables
	failures map[string]error
}

func (d *db) fail(op string) error {
	if err, ok := d.failures[op]; ok {
		return err
	}
	return nil
}

// Store はrepository.Storeとrepository.RecordRepositoryのインメモリ実装。
type Store struct {
	txMu sync.Mutex
	db   *db
}

// NewStore は空のStoreを生成する。
func NewStore() *Store {
	return &Store{db: &db{t: newTables(), failures: map[string]error{}}}
}

// FailOn は指定操作（例: "Users.DeleteByID"）が次回以降errを返すように設定する。
func (s *Store) FailOn(op string, err error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.failures[op] = err
}

// Repos はトランザクション外で使用するリポジトリ群を返す。
func (s *Store) Repos() repository.Repositories {
	return newRepositories(s.db)
}

// InTx はテーブル集合の複製に対してfnを実行し、成功時のみ複製を反映する。
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.db.mu.RLock()
	txDB := &db{t: s.db.t.clone(), failures: cloneMap(s.db.failures)}
	s.db.mu.RUnlock()

	if err := fn(ctx, newRepositories(txDB)); err != nil {
		return err
	}

	s.db.mu.Lock()
	s.db.t = txDB.t
	s.db.mu.Unlock()
	return nil
}

// ListSessionRecords はユーザーのセッションを子レコードと結合して日時の昇順で返す。
func (s *Store) ListSessionRecords(_ context.Context, userID string) ([]model.SessionRecord, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.fail("Records.ListSessionRecords"); err != nil {
		return nil, err
	}
	t := s.db.t

	records := []model.SessionRecord{}
	index := map[string]int{}
	for _, sess := range sortedSessions(t.sessions, userID) {
		index[sess.ID] = len(records)
		records = append(records, model.SessionRecord{
			ID:           sess.ID,
			UserID:       sess.UserID,
			Title:        sess.Title,
			Datetime:     sess.Datetime,
			Distractions: []model.DistractionRecord{},
			Works:        []model.WorkRecord{},
			Studies:      []model.StudyRecord{},
		})
	}

	for _, d := range sortedValues(t.distractions, func(a, b model.Distraction) bool { return createdBefore(a.CreatedAt, b.CreatedAt, a.ID, b.ID) }) {
		if i, ok := index[d.SessionID]; ok {
			records[i].Distractions = append(records[i].Distractions, model.DistractionRecord{ID: d.ID, Type: d.Type, TimeTaken: d.TimeTaken})
		}
	}
	for _, w := range sortedValues(t.works, func(a, b model.AssignmentWork) bool { return createdBefore(a.CreatedAt, b.CreatedAt, a.ID, b.ID) }) {
		i, ok := index[w.SessionID]
		if !ok {
			continue
		}
		a, ok := t.assignments[w.AssignmentID]
		if !ok {
			return nil, fmt.Errorf("assignment work %s: %w", w.ID, ErrForeignKey)
		}
		c, ok := t.classes[a.ClassID]
		if !ok {
			return nil, fmt.Errorf("assignment %s: %w", a.ID, ErrForeignKey)
		}
		records[i].Works = append(records[i].Works, model.WorkRecord{
			ID:   w.ID,
			Time: w.Time,
			Assignment: model.AssignmentRef{
				ID:    a.ID,
				Title: a.Title,
				Class: model.ClassRef{ID: c.ID, ClassCode: c.ClassCode, Professor: c.Professor},
			},
		})
	}
	for _, st := range sortedValues(t.studies, func(a, b model.Study) bool { return createdBefore(a.CreatedAt, b.CreatedAt, a.ID, b.ID) }) {
		if i, ok := index[st.SessionID]; ok {
			records[i].Studies = append(records[i].Studies, model.StudyRecord{ID: st.ID, What: st.What, Understanding: st.Understanding, Time: st.Time})
		}
	}
	return records, nil
}

var (
	_ repository.Store            = (*Store)(nil)
	_ repository.RecordRepository = (*Store)(nil)
)

func sortedSessions(m map[string]model.StudySession, userID string) []model.StudySession {
	out := []model.StudySession{}
	for _, s := range m {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Datetime.Equal(out[j].Datetime) {
			return out[i].ID < out[j].ID
		}
		return out[i].Datetime.Before(out[j].Datetime)
	})
	return out
}

// sortedValues はマップの値をlessの順で返す。マップの反復順に依存しないようにする。
func sortedValues[V any](m map[string]V, less func(a, b V) bool) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// createdBefore は作成日時、同時刻ならIDで比較する。
func createdBefore(a, b time.Time, aID, bID string) bool {
	if a.Equal(b) {
		return aID < bID
	}
	return a.Before(b)
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
