package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/studylog"
)

// StudyLogServiceInterface はセッションと子レコードのハンドラーが必要とするサービスインターフェース。
type StudyLogServiceInterface interface {
	ListSessions(ctx context.Context, userID string) ([]*model.StudySession, error)
	CreateSession(ctx context.Context, userID string, in studylog.SessionInput) (*model.StudySession, error)
	UpdateSession(ctx context.Context, userID, sessionID string, in studylog.SessionInput) (*model.StudySession, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error

	ListStudies(ctx context.Context, userID, sessionID string) ([]*model.Study, error)
	CreateStudy(ctx context.Context, userID string, in studylog.StudyInput) (*model.Study, error)
	UpdateStudy(ctx context.Context, userID, studyID string, in studylog.StudyInput) (*model.Study, error)
	DeleteStudy(ctx context.Context, userID, studyID string) error

	ListDistractions(ctx context.Context, userID, sessionID string) ([]*model.Distraction, error)
	ListMyDistractionTypes(ctx context.Context, userID string) ([]string, error)
	CreateDistraction(ctx context.Context, userID string, in studylog.DistractionInput) (*model.Distraction, error)
	UpdateDistraction(ctx context.Context, userID, distractionID string, in studylog.DistractionInput) (*model.Distraction, error)
	DeleteDistraction(ctx context.Context, userID, distractionID string) error

	ListWorks(ctx context.Context, userID, sessionID string) ([]*model.AssignmentWorkWithAssignment, error)
	CreateWork(ctx context.Context, userID string, in studylog.WorkInput) (*model.AssignmentWorkWithAssignment, error)
	UpdateWork(ctx context.Context, userID, workID string, in studylog.WorkInput) (*model.AssignmentWorkWithAssignment, error)
	DeleteWork(ctx context.Context, userID, workID string) error
}

// StudyLogHandler は学習セッション・学習内容・中断・課題作業のHTTPハンドラー。
type StudyLogHandler struct {
	responder
	service StudyLogServiceInterface
}

// NewStudyLogHandler はStudyLogHandlerを生成する。
func NewStudyLogHandler(service StudyLogServiceInterface, errCfg ErrorConfig) *StudyLogHandler {
	return &StudyLogHandler{responder: responder{errors: errCfg}, service: service}
}

// --- 学習セッション ---

// ListSessions はセッションを新しい日時順に返す。
// GET /sessions/mine
func (h *StudyLogHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAll(sessions, toSessionResponse))
}

// CreateSession はセッションを作成する。datetime省略時は現在時刻。
// POST /sessions
func (h *StudyLogHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in studylog.SessionInput
	if !decodeBody(w, r, &in) {
		return
	}

	session, err := h.service.CreateSession(r.Context(), userID, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// UpdateSession はセッションを更新する。
// PUT /sessions/{id}
func (h *StudyLogHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in studylog.SessionInput
	if !decodeBody(w, r, &in) {
		return
	}

	session, err := h.service.UpdateSession(r.Context(), userID, idParam(r), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// DeleteSession はセッションと子レコードを削除する。
// DELETE /sessions/{id}
func (h *StudyLogHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSession(r.Context(), userID, idParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Study session deleted successfully")
}

// --- 学習内容 ---

// ListStudies はセッションの学習内容を返す。
// GET /study/{id} ({id} はセッションID)
func (h *StudyLogHandler) ListStudies(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	studies, err := h.service.ListStudies(r.Context(), userID, idParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAll(studies, toStudyResponse))
}

// CreateStudy は学習内容を記録する。
// POST /study/create
func (h *StudyLogHandler) CreateStudy(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in studylog.StudyInput
	if !decodeBody(w, r, &in) {
		return
	}

	study, err := h.service.CreateStudy(r.Context(), userID, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toStudyResponse(study))
}

// UpdateStudy は学習内容を更新する。
// PUT /study/{id}
func (h *StudyLogHandler) UpdateStudy(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in studylog.StudyInput
	if !decodeBody(w, r, &in) {
		return
	}

	study, err := h.service.UpdateStudy(r.Context(), userID, idParam(r), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudyResponse(study))
}

// DeleteStudy は学習内容を削除する。
// DELETE /study/{id}
func (h *StudyLogHandler) DeleteStudy(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteStudy(r.Context(), userID, idParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- 中断 ---

// ListDistractions はセッションの中断記録を返す。
// GET /distractions/{id} ({id} はセッションID)
func (h *StudyLogHandler) ListDistractions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	distractions, err := h.service.ListDistractions(r.Context(), userID, idParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAll(distractions, toDistractionResponse))
}

// ListMyDistractionTypes はユーザーが記録した中断種別を重複なしで返す。
// GET /distractions/types/mine
func (h *StudyLogHandler) ListMyDistractionTypes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	types, err := h.service.ListMyDistractionTypes(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if types == nil {
		types = []string{}
	}

	writeJSON(w, http.StatusOK, types)
}

// CreateDistraction は中断を記録する。
// POST /distractions/create
func (h *StudyLogHandler) CreateDistraction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in studylog.DistractionInput
	if !decodeBody(w, r, &in) {
		return
	}

	d, err := h.service.CreateDistraction(r.Context(), userID, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDistractionResponse(d))
}

// UpdateDistraction は中断記録を更新する。
// PUT /distractions/{id}
func (h *StudyLogHandler) UpdateDistraction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in studylog.DistractionInput
	if !decodeBody(w, r, &in) {
		return
	}

	d, err := h.service.UpdateDistraction(r.Context(), userID, idParam(r), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDistractionResponse(d))
}

// DeleteDistraction は中断記録を削除する。
// DELETE /distractions/{id}
func (h *StudyLogHandler) DeleteDistraction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteDistraction(r.Context(), userID, idParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- 課題作業 ---

// ListWorks はセッションの課題作業を対象課題付きで返す。
// GET /work/{id} ({id} はセッションID)
func (h *StudyLogHandler) ListWorks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	works, err := h.service.ListWorks(r.Context(), userID, idParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAll(works, toWorkResponse))
}

// CreateWork は課題作業を記録する。
// POST /work/create
func (h *StudyLogHandler) CreateWork(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in studylog.WorkInput
	if !decodeBody(w, r, &in) {
		return
	}

	work, err := h.service.CreateWork(r.Context(), userID, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkResponse(work))
}

// UpdateWork は課題作業の時間を更新する。
// PUT /work/{id}
func (h *StudyLogHandler) UpdateWork(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in studylog.WorkInput
	if !decodeBody(w, r, &in) {
		return
	}

	work, err := h.service.UpdateWork(r.Context(), userID, idParam(r), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkResponse(work))
}

// DeleteWork は課題作業を削除する。
// DELETE /work/{id}
func (h *StudyLogHandler) DeleteWork(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteWork(r.Context(), userID, idParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Work entry deleted successfully")
}
