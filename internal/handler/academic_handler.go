package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/studytrack/internal/academic"
	"github.com/hitoshi/studytrack/internal/model"
)

// AcademicServiceInterface は学期・授業・課題ハンドラーが必要とするサービスインターフェース。
type AcademicServiceInterface interface {
	ListSemesters(ctx context.Context, userID string) ([]*model.Semester, error)
	CreateSemester(ctx context.Context, userID string, in academic.SemesterInput) (*model.Semester, error)
	UpdateSemester(ctx context.Context, userID, semesterID string, in academic.SemesterInput) (*model.Semester, error)
	DeleteSemester(ctx context.Context, userID, semesterID string) error

	ListClasses(ctx context.Context, userID, semesterID string) ([]*model.Class, error)
	ListMyClasses(ctx context.Context, userID string) ([]*model.Class, error)
	CreateClass(ctx context.Context, userID string, in academic.ClassInput) (*model.Class, error)
	UpdateClass(ctx context.Context, userID, classID string, in academic.ClassInput) (*model.Class, error)
	DeleteClass(ctx context.Context, userID, classID string) error

	ListAssignments(ctx context.Context, userID, classID string) ([]*model.Assignment, error)
	ListMyAssignments(ctx context.Context, userID string) ([]*model.AssignmentWithClass, error)
	CreateAssignment(ctx context.Context, userID string, in academic.AssignmentInput) (*model.Assignment, error)
	UpdateAssignment(ctx context.Context, userID, assignmentID string, in academic.AssignmentInput) (*model.Assignment, error)
	DeleteAssignment(ctx context.Context, userID, assignmentID string) error
}

// AcademicHandler は学期・授業・課題のHTTPハンドラー。
type AcademicHandler struct {
	responder
	service AcademicServiceInterface
}

// NewAcademicHandler はAcademicHandlerを生成する。
func NewAcademicHandler(service AcademicServiceInterface, errCfg ErrorConfig) *AcademicHandler {
	return &AcademicHandler{responder: responder{errors: errCfg}, service: service}
}

// --- 学期 ---

// ListSemesters は学期を新しい年度順に返す。
// GET /semesters
func (h *AcademicHandler) ListSemesters(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	semesters, err := h.service.ListSemesters(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAll(semesters, toSemesterResponse))
}

// CreateSemester は学期を作成する。
// POST /semesters
func (h *AcademicHandler) CreateSemester(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in academic.SemesterInput
	if !decodeBody(w, r, &in) {
		return
	}

	semester, err := h.service.CreateSemester(r.Context(), userID, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSemesterResponse(semester))
}

// UpdateSemester は学期を更新する。
// PUT /semesters/{id}
func (h *AcademicHandler) UpdateSemester(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in academic.SemesterInput
	if !decodeBody(w, r, &in) {
		return
	}

	semester, err := h.service.UpdateSemester(r.Context(), userID, idParam(r), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSemesterResponse(semester))
}

// DeleteSemester は学期と配下の授業・課題・課題作業を削除する。
// DELETE /semesters/{id}
func (h *AcademicHandler) DeleteSemester(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSemester(r.Context(), userID, idParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Semester deleted successfully")
}

// --- 授業 ---

// ListClasses は学期に属する授業を返す。
// GET /classes/{id} ({id} は学期ID)
func (h *AcademicHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	classes, err := h.service.ListClasses(r.Context(), userID, idParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAll(classes, toClassResponse))
}

// ListMyClasses はユーザーの全学期の授業を返す。
// GET /classes/mine
func (h *AcademicHandler) ListMyClasses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	classes, err := h.service.ListMyClasses(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAll(classes, toClassResponse))
}

// CreateClass は授業を作成する。
// POST /classes
func (h *AcademicHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in academic.ClassInput
	if !decodeBody(w, r, &in) {
		return
	}

	class, err := h.service.CreateClass(r.Context(), userID, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toClassResponse(class))
}

// UpdateClass は空でないフィールドのみ授業に反映する。
// PUT /classes/{id}
func (h *AcademicHandler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in academic.ClassInput
	if !decodeBody(w, r, &in) {
		return
	}

	class, err := h.service.UpdateClass(r.Context(), userID, idParam(r), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toClassResponse(class))
}

// DeleteClass は授業と配下の課題・課題作業を削除する。
// DELETE /classes/{id}
func (h *AcademicHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteClass(r.Context(), userID, idParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Class deleted successfully")
}

// --- 課題 ---

// ListAssignments は授業に属する課題を返す。
// GET /assignments/{id} ({id} は授業ID)
func (h *AcademicHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.ListAssignments(r.Context(), userID, idParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAll(assignments, toAssignmentResponse))
}

// ListMyAssignments はユーザーの全課題を所属授業付きで返す。
// GET /assignments/mine
func (h *AcademicHandler) ListMyAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.ListMyAssignments(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAll(assignments, toAssignmentWithClassResponse))
}

// CreateAssignment は課題を作成する。
// POST /assignments
func (h *AcademicHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in academic.AssignmentInput
	if !decodeBody(w, r, &in) {
		return
	}

	assignment, err := h.service.CreateAssignment(r.Context(), userID, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssignmentResponse(assignment))
}

// UpdateAssignment は課題を更新する。
// PUT /assignments/{id}
func (h *AcademicHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in academic.AssignmentInput
	if !decodeBody(w, r, &in) {
		return
	}

	assignment, err := h.service.UpdateAssignment(r.Context(), userID, idParam(r), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAssignmentResponse(assignment))
}

// DeleteAssignment は課題と課題作業を削除する。
// DELETE /assignments/{id}
func (h *AcademicHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAssignment(r.Context(), userID, idParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Assignment deleted successfully")
}
