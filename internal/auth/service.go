// Package auth はユーザー登録・ログインとアクセストークンの発行・検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/repository"
	"github.com/hitoshi/studytrack/internal/security"
	"github.com/hitoshi/studytrack/internal/validate"
)

const (
	maxUsernameLength = 50
	minPasswordLength = 8
	// bcryptは72バイトを超える入力を扱えない
	maxPasswordBytes = 72
	maxSchoolLength  = 100
)

// RegisterInput は新規登録リクエスト。
type RegisterInput struct {
	Username  *string  `json:"username"`
	Password  *string  `json:"password"`
	StartYear *float64 `json:"startYear"`
	School    *string  `json:"school"`
}

// LoginInput はログインリクエスト。
type LoginInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	tokens    *TokenManager
	sanitizer security.StringSanitizer
	config    ServiceConfig
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokens *TokenManager,
	sanitizer security.StringSanitizer,
	config ServiceConfig,
) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:  userRepo,
		tokens:    tokens,
		sanitizer: sanitizer,
		config:    config,
		now:       time.Now,
	}
}

// Register はユーザーを作成してアクセストークンを返す。
// ユーザー名が既に使われている場合はCONFLICTを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	year := s.now().Year()
	violations := validate.Check(
		validate.Rule{Field: "username", Kind: validate.String, Value: in.Username, Required: true,
			NotBlank: true, MaxLen: maxUsernameLength, NoOperatorPrefix: true},
		validate.Rule{Field: "password", Kind: validate.String, Value: in.Password, Required: true,
			MinLen: minPasswordLength, Custom: func() string {
				if len(*in.Password) > maxPasswordBytes {
					return fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes)
				}
				return ""
			}},
		validate.Rule{Field: "startYear", Kind: validate.Int, Value: in.StartYear,
			Range: &validate.Range{Min: max(1900, year-100), Max: year + 5}},
		validate.Rule{Field: "school", Kind: validate.String, Value: in.School,
			NotBlank: true, MaxLen: maxSchoolLength},
	)
	if err := validate.Err(violations); err != nil {
		return "", err
	}

	username := s.sanitizer.Clean(*in.Username, maxUsernameLength)
	if username == "" {
		return "", validate.Err([]string{"username cannot be empty"})
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return "", model.NewConflictError("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.config.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.StartYear != nil {
		y := validate.IntValue(in.StartYear)
		user.StartYear = &y
	}
	if in.School != nil {
		user.School = s.sanitizer.Clean(*in.School, maxSchoolLength)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 同時登録による一意制約違反
		if errors.Is(err, repository.ErrDuplicate) {
			return "", model.NewConflictError("User already exists")
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	return s.tokens.Issue(user.ID)
}

// Login はユーザー名とパスワードを照合してアクセストークンを返す。
// ユーザーが存在しない場合とパスワード不一致は区別しない。
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	violations := validate.Check(
		validate.Rule{Field: "username", Kind: validate.String, Value: in.Username, Required: true},
		validate.Rule{Field: "password", Kind: validate.String, Value: in.Password, Required: true},
	)
	if err := validate.Err(violations); err != nil {
		return "", err
	}

	username := s.sanitizer.Clean(*in.Username, maxUsernameLength)
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*in.Password)); err != nil {
		slog.InfoContext(ctx, "login failed", slog.String("user_id", user.ID))
		return "", model.NewInvalidCredentialsError()
	}

	return s.tokens.Issue(user.ID)
}

// Authenticate はトークンを検証し、ユーザーが存在する場合にそのIDを返す。
// 退会済みユーザーのトークンは拒否する。
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", model.NewUnauthorizedError()
	}
	return user.ID, nil
}
