package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/internal/repository"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateWithProfile(ctx context.Context, user *models.User, student *models.Student, professor *models.Professor) error
}

type authStudentReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type authProfessorReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Professor, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// RegisterUserRequest creates a user account together with its role profile.
type RegisterUserRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=8"`
	FirstName string          `json:"first_name" validate:"required,max=100"`
	LastName  string          `json:"last_name" validate:"required,max=100"`
	DNI       string          `json:"dni" validate:"required,max=20"`
	Phone     *string         `json:"phone"`
	Role      models.UserRole `json:"role" validate:"required,oneof=ADMINISTRATOR PROFESSOR STUDENT"`

	// Student profile fields, required when Role is STUDENT.
	StudentID  *string `json:"student_id"`
	CareerCode *string `json:"career_code"`

	// Professor profile fields, required when Role is PROFESSOR.
	ProfessorID *string                   `json:"professor_id"`
	Degree      *string                   `json:"degree"`
	Category    *models.ProfessorCategory `json:"category"`
}

// AuthService provides authentication and account provisioning.
type AuthService struct {
	users      authUserRepository
	students   authStudentReader
	professors authProfessorReader
	validator  *validator.Validate
	logger     *zap.Logger
	config     AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, students authStudentReader, professors authProfessorReader, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, students: students, professors: professors, validator: validate, logger: logger, config: config}
}

// Login authenticates a user and returns an issued access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	token, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("user logged in", zap.String("user", user.ID), zap.String("role", string(user.Role)))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		IssuedAt:    time.Now().UTC(),
		User: models.UserInfo{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
	}, nil
}

// RegisterUser provisions a user account together with its role profile.
// Account and profile are written in one transaction, so a rejected student
// or professor record never leaves an orphaned account behind.
// Administrator accounts carry no extra record.
func (s *AuthService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	switch req.Role {
	case models.RoleStudent:
		if req.StudentID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required for student accounts")
		}
	case models.RoleProfessor:
		if req.ProfessorID == nil || req.Degree == nil || req.Category == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "professor_id, degree and category are required for professor accounts")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DNI:          req.DNI,
		Phone:        req.Phone,
		Role:         req.Role,
		Active:       true,
	}
	var student *models.Student
	var professor *models.Professor
	switch req.Role {
	case models.RoleStudent:
		student = &models.Student{
			StudentID:  *req.StudentID,
			UserID:     user.ID,
			CareerCode: req.CareerCode,
		}
	case models.RoleProfessor:
		professor = &models.Professor{
			ProfessorID: *req.ProfessorID,
			UserID:      user.ID,
			Degree:      *req.Degree,
			HireDate:    time.Now().UTC(),
			Category:    *req.Category,
		}
	}

	if err := s.users.CreateWithProfile(ctx, user, student, professor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, duplicateAccountMessage(req.Role))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	s.logger.Info("user registered", zap.String("user", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func duplicateAccountMessage(role models.UserRole) string {
	switch role {
	case models.RoleStudent:
		return "email or student id already registered"
	case models.RoleProfessor:
		return "email or professor id already registered"
	default:
		return "email already registered"
	}
}

// GetUser returns a user by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}

// GetProfile returns a user together with its role-specific profile built
// through the tagged profile union. Administrator accounts carry no separate
// record, so their profile is derived from the account itself.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, models.Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, models.Profile{}, err
	}

	var profile models.Profile
	switch user.Role {
	case models.RoleStudent:
		student, err := s.students.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, models.Profile{}, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
			}
			return nil, models.Profile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student profile")
		}
		profile, err = models.NewProfile(user.Role, student, nil, nil)
		if err != nil {
			return nil, models.Profile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build profile")
		}
	case models.RoleProfessor:
		professor, err := s.professors.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, models.Profile{}, appErrors.Clone(appErrors.ErrNotFound, "professor profile not found")
			}
			return nil, models.Profile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch professor profile")
		}
		profile, err = models.NewProfile(user.Role, nil, professor, nil)
		if err != nil {
			return nil, models.Profile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build profile")
		}
	default:
		admin := &models.Administrator{AdminID: user.ID, UserID: user.ID, HireDate: user.CreatedAt}
		profile, err = models.NewProfile(user.Role, nil, nil, admin)
		if err != nil {
			return nil, models.Profile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build profile")
		}
	}
	return user, profile, nil
}

// ValidateToken parses and validates an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
