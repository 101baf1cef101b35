package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mall-api/internal/domain"
	"mall-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// Token expiration times
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
)

// AccountService defines the business logic for accounts and login sessions.
// Authenticate collapses "unknown username" and "wrong password" into the
// single ErrInvalidCredentials so callers cannot probe for usernames.
type AccountService interface {
	Register(ctx context.Context, username, password, role, fullName, address, paymentInfo string) (*domain.Account, error)
	RegisterAdmin(ctx context.Context, username, password, fullName string) (*domain.Account, error)
	EnsureDefaultAdmin(ctx context.Context, username, password, fullName string) error
	Authenticate(ctx context.Context, username, password string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, account *domain.Account, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	UpdateProfile(ctx context.Context, username, fullName, address, paymentInfo string) (int64, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// Claims represents the JWT claims
type Claims struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

type accountService struct {
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	jwtSecret   string
}

// NewAccountService creates a new instance of AccountService
func NewAccountService(
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	jwtSecret string,
) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		jwtSecret:   jwtSecret,
	}
}

// Register creates a new account with a hashed password. Username
// uniqueness is enforced by the storage layer; a duplicate surfaces as
// repository.ErrAccountAlreadyExists.
func (s *accountService) Register(ctx context.Context, username, password, role, fullName, address, paymentInfo string) (*domain.Account, error) {
	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         role,
		FullName:     fullName,
		Address:      address,
		PaymentInfo:  paymentInfo,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if err == repository.ErrAccountAlreadyExists {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// RegisterAdmin creates an account with the admin role fixed
func (s *accountService) RegisterAdmin(ctx context.Context, username, password, fullName string) (*domain.Account, error) {
	return s.Register(ctx, username, password, domain.RoleAdmin, fullName, "", "")
}

// EnsureDefaultAdmin creates the default admin account unless an account
// with that username already exists. Safe to call on every startup.
func (s *accountService) EnsureDefaultAdmin(ctx context.Context, username, password, fullName string) error {
	_, err := s.accountRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if err != repository.ErrAccountNotFound {
		return fmt.Errorf("failed to check for default admin: %w", err)
	}

	if _, err := s.RegisterAdmin(ctx, username, password, fullName); err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}

	return nil
}

// Authenticate verifies a username/password pair and returns the account.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *accountService) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		if err == repository.ErrAccountNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if err := s.verifyPassword(account.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// Login authenticates an account and returns JWT tokens
func (s *accountService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, account *domain.Account, err error) {
	account, err = s.Authenticate(ctx, username, password)
	if err != nil {
		return "", "", nil, err
	}

	accessToken, err = s.generateAccessToken(account)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, account)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, account, nil
}

// Logout revokes the refresh token session
func (s *accountService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.sessionRepo.Revoke(ctx, refreshToken); err != nil {
		if err == repository.ErrSessionNotFound {
			// Session doesn't exist, consider it already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *accountService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	session, err := s.sessionRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if err == repository.ErrSessionNotFound || err == repository.ErrSessionRevoked {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		return "", ErrTokenExpired
	}

	account, err := s.accountRepo.FindByID(ctx, session.AccountID)
	if err != nil {
		return "", fmt.Errorf("failed to find account: %w", err)
	}

	newAccessToken, err = s.generateAccessToken(account)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *accountService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// UpdateProfile updates the mutable profile fields (full name, address,
// payment info) for the account matching username. It returns the number
// of accounts matched; zero is not an error, the operation is a no-op.
func (s *accountService) UpdateProfile(ctx context.Context, username, fullName, address, paymentInfo string) (int64, error) {
	matched, err := s.accountRepo.UpdateProfile(ctx, username, fullName, address, paymentInfo)
	if err != nil {
		return 0, fmt.Errorf("failed to update profile: %w", err)
	}
	return matched, nil
}

// FindByUsername retrieves an account by its username
func (s *accountService) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return s.accountRepo.FindByUsername(ctx, username)
}

// hashPassword hashes a password using bcrypt
func (s *accountService) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// verifyPassword verifies a password against a bcrypt hash
func (s *accountService) verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// generateAccessToken generates a JWT access token with account claims
func (s *accountService) generateAccessToken(account *domain.Account) (string, error) {
	expirationTime := time.Now().Add(AccessTokenExpiration)
	claims := &Claims{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// generateRefreshToken generates a refresh token and stores its session
func (s *accountService) generateRefreshToken(ctx context.Context, account *domain.Account) (string, error) {
	tokenString := uuid.New().String()

	session := &domain.Session{
		ID:        uuid.New(),
		AccountID: account.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(RefreshTokenExpiration),
		CreatedAt: time.Now(),
		Revoked:   false,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", err
	}

	return tokenString, nil
}
