package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL          = 24 * time.Hour
	minPasswordLength = 6
)

type AuthService struct {
	repo          ports.AccountRepository
	jwtSecret     []byte
	allowedEmails []string
	now           func() time.Time
}

func NewAuthService(repo ports.AccountRepository, jwtSecret string, allowedEmails []string) *AuthService {
	return &AuthService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		allowedEmails: allowedEmails,
		now:           time.Now,
	}
}

type sessionClaims struct {
	Role domain.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

func (s *AuthService) RegisterEmployee(ctx context.Context, name, email, password string) (*domain.Employee, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, "", domain.Invalid("name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", domain.Invalid("email is not valid")
	}
	if len(password) < minPasswordLength {
		return nil, "", domain.Invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	existing, err := s.repo.GetEmployeeByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	employee := &domain.Employee{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateEmployee(ctx, employee); err != nil {
		return nil, "", err
	}

	token, err := s.issue(domain.RoleEmployee, employee.Code, employee.Name)
	if err != nil {
		return nil, "", err
	}
	return employee, token, nil
}

func (s *AuthService) LoginEmployee(ctx context.Context, email, password string) (*domain.Employee, string, error) {
	employee, err := s.repo.GetEmployeeByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if employee == nil || !checkPassword(employee.PasswordHash, password) {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issue(domain.RoleEmployee, employee.Code, employee.Name)
	if err != nil {
		return nil, "", err
	}
	return employee, token, nil
}

func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*domain.Admin, string, error) {
	admin, err := s.repo.GetAdminByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if admin == nil || !checkPassword(admin.PasswordHash, password) {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issue(domain.RoleAdmin, admin.ID, admin.Name)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// LoginAdminByEmail signs in an admin the identity provider has already verified.
// Allowlisted emails without an admin row get one on first sign-in.
func (s *AuthService) LoginAdminByEmail(ctx context.Context, email string) (*domain.Admin, string, error) {
	email = normalizeEmail(email)
	admin, err := s.repo.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if admin == nil {
		if !s.isAllowed(email) {
			return nil, "", domain.ErrForbidden
		}
		admin, err = s.createAdmin(ctx, strings.SplitN(email, "@", 2)[0], email, uuid.NewString())
		if err != nil {
			return nil, "", err
		}
	}

	token, err := s.issue(domain.RoleAdmin, admin.ID, admin.Name)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// SeedAdmin creates the configured admin account once
func (s *AuthService) SeedAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.repo.GetAdminByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.createAdmin(ctx, name, email, password)
	return err
}

func (s *AuthService) createAdmin(ctx context.Context, name, email, password string) (*domain.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if name == "" {
		name = "Admin"
	}
	admin := &domain.Admin{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) ParseToken(tokenString string) (*domain.Claims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	if claims.Role != domain.RoleAdmin && claims.Role != domain.RoleEmployee {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Claims{Role: claims.Role, Subject: claims.Subject, Name: claims.Name}, nil
}

func (s *AuthService) CurrentAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	admin, err := s.repo.GetAdminByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, domain.ErrNotFound
	}
	return admin, nil
}

func (s *AuthService) CurrentEmployee(ctx context.Context, code string) (*domain.Employee, error) {
	employee, err := s.repo.GetEmployeeByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, domain.ErrNotFound
	}
	return employee, nil
}

func (s *AuthService) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.ListEmployees(ctx)
}

func (s *AuthService) issue(role domain.Role, subject, name string) (string, error) {
	now := s.now()
	claims := &sessionClaims{
		Role: role,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) isAllowed(email string) bool {
	for _, allowed := range s.allowedEmails {
		if normalizeEmail(allowed) == email {
			return true
		}
	}
	return false
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ ports.AuthService = (*AuthService)(nil)
