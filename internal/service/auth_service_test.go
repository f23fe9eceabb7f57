package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/internal/repository"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[string]*models.User // keyed by email
	students   *mockAuthStudentReader
	professors *mockAuthProfessorReader
	profileErr error // simulated profile-insert failure inside the registration tx
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) CreateWithProfile(ctx context.Context, user *models.User, student *models.Student, professor *models.Professor) error {
	if m.profileErr != nil && (student != nil || professor != nil) {
		return m.profileErr
	}
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	m.users[user.Email] = user
	if student != nil {
		m.students.created = append(m.students.created, student)
	}
	if professor != nil {
		m.professors.created = append(m.professors.created, professor)
	}
	return nil
}

type mockAuthStudentReader struct {
	created []*models.Student
}

func (m *mockAuthStudentReader) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	for _, student := range m.created {
		if student.UserID == userID {
			return student, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockAuthProfessorReader struct {
	created []*models.Professor
}

func (m *mockAuthProfessorReader) FindByUserID(ctx context.Context, userID string) (*models.Professor, error) {
	for _, professor := range m.created {
		if professor.UserID == userID {
			return professor, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newAuthFixture(t *testing.T) (*AuthService, *mockUserRepo, *mockAuthStudentReader, *mockAuthProfessorReader) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mockUserRepo{users: map[string]*models.User{
		"ana@example.edu": {
			ID:           "u1",
			Email:        "ana@example.edu",
			PasswordHash: string(hash),
			FirstName:    "Ana",
			LastName:     "Gomez",
			Role:         models.RoleStudent,
			Active:       true,
		},
		"off@example.edu": {
			ID:           "u2",
			Email:        "off@example.edu",
			PasswordHash: string(hash),
			Role:         models.RoleProfessor,
			Active:       false,
		},
	}}
	students := &mockAuthStudentReader{}
	professors := &mockAuthProfessorReader{}
	users.students = students
	users.professors = professors
	svc := NewAuthService(users, students, professors, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "academia-api",
	})
	return svc, users, students, professors
}

func TestAuthLoginAndValidate(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.edu", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthLoginRejections(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.edu", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.edu", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "off@example.edu", Password: "correct-horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsTampered(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthRegisterStudent(t *testing.T) {
	svc, users, students, _ := newAuthFixture(t)

	user, err := svc.RegisterUser(context.Background(), RegisterUserRequest{
		Email:      "leo@example.edu",
		Password:   "super-secret",
		FirstName:  "Leo",
		LastName:   "Diaz",
		DNI:        "33123456",
		Role:       models.RoleStudent,
		StudentID:  strPtr("12345/6"),
		CareerCode: strPtr("INF"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Contains(t, users.users, "leo@example.edu")
	require.Len(t, students.created, 1)
	assert.Equal(t, "12345/6", students.created[0].StudentID)
	assert.Equal(t, user.ID, students.created[0].UserID)
}

func TestAuthRegisterRejectedProfileLeavesNoAccount(t *testing.T) {
	svc, users, students, _ := newAuthFixture(t)
	users.profileErr = repository.ErrDuplicate

	_, err := svc.RegisterUser(context.Background(), RegisterUserRequest{
		Email:     "leo@example.edu",
		Password:  "super-secret",
		FirstName: "Leo",
		LastName:  "Diaz",
		DNI:       "33123456",
		Role:      models.RoleStudent,
		StudentID: strPtr("12345/6"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.NotContains(t, users.users, "leo@example.edu")
	assert.Empty(t, students.created)
}

func TestAuthGetProfileByRole(t *testing.T) {
	svc, _, students, _ := newAuthFixture(t)

	careerCode := "INF"
	students.created = append(students.created, &models.Student{StudentID: "12345/6", UserID: "u1", CareerCode: &careerCode})

	user, profile, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, profile.Role)
	require.NotNil(t, profile.Student)
	assert.Equal(t, "12345/6", profile.Student.StudentID)
	assert.Nil(t, profile.Professor)
	assert.Equal(t, "ana@example.edu", user.Email)

	// professor account without its record
	_, _, err = svc.GetProfile(context.Background(), "u2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAuthRegisterProfessorRequiresProfile(t *testing.T) {
	svc, _, _, professors := newAuthFixture(t)

	_, err := svc.RegisterUser(context.Background(), RegisterUserRequest{
		Email:     "prof@example.edu",
		Password:  "super-secret",
		FirstName: "Eva",
		LastName:  "Ruiz",
		DNI:       "28999111",
		Role:      models.RoleProfessor,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, professors.created)

	category := models.CategoryTitular
	_, err = svc.RegisterUser(context.Background(), RegisterUserRequest{
		Email:       "prof@example.edu",
		Password:    "super-secret",
		FirstName:   "Eva",
		LastName:    "Ruiz",
		DNI:         "28999111",
		Role:        models.RoleProfessor,
		ProfessorID: strPtr("P-100"),
		Degree:      strPtr("PhD in Mathematics"),
		Category:    &category,
	})
	require.NoError(t, err)
	require.Len(t, professors.created, 1)
	assert.Equal(t, models.CategoryTitular, professors.created[0].Category)
}
