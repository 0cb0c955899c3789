package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/repository"
	"github.com/hitoshi/studytrack/internal/security"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	createFn         func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, _ *model.User) error {
	return nil
}

func (m *mockUserRepo) DeleteByID(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

// --- ヘルパー ---

func strPtr(s string) *string { return &s }

func numPtr(n float64) *float64 { return &n }

func newTestService(repo repository.UserRepository) *Service {
	return NewService(repo, NewTokenManager("test-secret", time.Hour), security.NewSanitizer(),
		ServiceConfig{BcryptCost: bcrypt.MinCost})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	return string(h)
}

// --- テスト ---

// TestRegister_CreatesUserAndIssuesToken は新規登録でユーザーが作成されトークンが返ることを検証する。
func TestRegister_CreatesUserAndIssuesToken(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(repo)

	token, err := svc.Register(context.Background(), RegisterInput{
		Username:  strPtr("  alice "),
		Password:  strPtr("correct horse"),
		StartYear: numPtr(float64(time.Now().Year())),
		School:    strPtr("<b>Purdue</b>"),
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if created.Username != "alice" {
		t.Errorf("Username = %q, want %q", created.Username, "alice")
	}
	if created.School != "Purdue" {
		t.Errorf("School = %q, want %q", created.School, "Purdue")
	}
	if created.StartYear == nil || *created.StartYear != time.Now().Year() {
		t.Errorf("StartYear = %v, want current year", created.StartYear)
	}
	if created.PasswordHash == "correct horse" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	userID, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token is invalid: %v", err)
	}
	if userID != created.ID {
		t.Errorf("token user = %q, want %q", userID, created.ID)
	}
}

// TestRegister_DuplicateUsername は既存ユーザー名での登録がCONFLICTになることを検証する。
func TestRegister_DuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: "u1", Username: username}, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			t.Fatal("Create must not be called")
			return nil
		},
	}

	_, err := newTestService(repo).Register(context.Background(), RegisterInput{
		Username: strPtr("alice"),
		Password: strPtr("password123"),
	})
	if !model.HasCode(err, model.ErrCodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

// TestRegister_RaceOnUniqueConstraint は一意制約違反がCONFLICTに変換されることを検証する。
func TestRegister_RaceOnUniqueConstraint(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicate
		},
	}

	_, err := newTestService(repo).Register(context.Background(), RegisterInput{
		Username: strPtr("alice"),
		Password: strPtr("password123"),
	})
	if !model.HasCode(err, model.ErrCodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

// TestRegister_Validation は不正な入力がストレージに到達せず拒否されることを検証する。
func TestRegister_Validation(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"ユーザー名なし", RegisterInput{Password: strPtr("password123")}},
		{"パスワードなし", RegisterInput{Username: strPtr("alice")}},
		{"短いパスワード", RegisterInput{Username: strPtr("alice"), Password: strPtr("short")}},
		{"長すぎるパスワード", RegisterInput{Username: strPtr("alice"), Password: strPtr(string(long))}},
		{"演算子接頭辞", RegisterInput{Username: strPtr("$gt"), Password: strPtr("password123")}},
		{"範囲外の入学年度", RegisterInput{Username: strPtr("alice"), Password: strPtr("password123"), StartYear: numPtr(1800)}},
		{"タグのみのユーザー名", RegisterInput{Username: strPtr("<b></b>"), Password: strPtr("password123")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{
				createFn: func(ctx context.Context, user *model.User) error {
					t.Fatal("Create must not be called")
					return nil
				},
			}
			_, err := newTestService(repo).Register(context.Background(), tt.in)
			if !model.HasCode(err, model.ErrCodeValidation) {
				t.Fatalf("expected VALIDATION_FAILED, got %v", err)
			}
		})
	}
}

// TestLogin_Success は正しい資格情報でトークンが発行されることを検証する。
func TestLogin_Success(t *testing.T) {
	hash := hashOf(t, "password123")
	repo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username != "alice" {
				return nil, nil
			}
			return &model.User{ID: "user-1", Username: "alice", PasswordHash: hash}, nil
		},
	}
	svc := newTestService(repo)

	token, err := svc.Login(context.Background(), LoginInput{Username: strPtr("alice"), Password: strPtr("password123")})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	userID, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token is invalid: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("token user = %q, want %q", userID, "user-1")
	}
}

// TestLogin_InvalidCredentials は未登録ユーザーとパスワード不一致が同じエラーになることを検証する。
func TestLogin_InvalidCredentials(t *testing.T) {
	hash := hashOf(t, "password123")
	repo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username == "alice" {
				return &model.User{ID: "user-1", Username: "alice", PasswordHash: hash}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	for _, in := range []LoginInput{
		{Username: strPtr("alice"), Password: strPtr("wrong-password")},
		{Username: strPtr("bob"), Password: strPtr("password123")},
	} {
		_, err := svc.Login(context.Background(), in)
		if !model.HasCode(err, model.ErrCodeInvalidCredentials) {
			t.Errorf("expected INVALID_CREDENTIALS for %q, got %v", *in.Username, err)
		}
	}
}

// TestLogin_RepositoryError はリポジトリエラーがそのまま伝播することを検証する。
func TestLogin_RepositoryError(t *testing.T) {
	dbErr := errors.New("connection refused")
	repo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, dbErr
		},
	}

	_, err := newTestService(repo).Login(context.Background(), LoginInput{Username: strPtr("alice"), Password: strPtr("x")})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

// TestAuthenticate は有効なトークンでも退会済みユーザーは拒否されることを検証する。
func TestAuthenticate(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			if id == "user-1" {
				return &model.User{ID: id}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	active, _ := svc.tokens.Issue("user-1")
	gone, _ := svc.tokens.Issue("user-2")

	got, err := svc.Authenticate(context.Background(), active)
	if err != nil || got != "user-1" {
		t.Fatalf("Authenticate(active) = %q, %v", got, err)
	}
	if _, err := svc.Authenticate(context.Background(), gone); !model.HasCode(err, model.ErrCodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED for withdrawn user, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "garbage"); !model.HasCode(err, model.ErrCodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED for garbage token, got %v", err)
	}
}
