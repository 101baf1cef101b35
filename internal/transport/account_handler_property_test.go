package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mall-api/internal/domain"
	"mall-api/internal/middleware"
	"mall-api/internal/repository"
	"mall-api/internal/service"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockAccountRepository struct {
	accounts map[string]*domain.Account
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *mockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if _, exists := m.accounts[account.Username]; exists {
		return repository.ErrAccountAlreadyExists
	}
	m.accounts[account.Username] = account
	return nil
}

func (m *mockAccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	account, exists := m.accounts[username]
	if !exists {
		return nil, repository.ErrAccountNotFound
	}
	return account, nil
}

func (m *mockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	for _, account := range m.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) UpdateProfile(ctx context.Context, username, fullName, address, paymentInfo string) (int64, error) {
	account, exists := m.accounts[username]
	if !exists {
		return 0, nil
	}
	account.FullName = fullName
	account.Address = address
	account.PaymentInfo = paymentInfo
	return 1, nil
}

type mockSessionRepository struct {
	sessions map[string]*domain.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	m.sessions[session.Token] = session
	return nil
}

func (m *mockSessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	session, exists := m.sessions[token]
	if !exists {
		return nil, repository.ErrSessionNotFound
	}
	if session.Revoked {
		return nil, repository.ErrSessionRevoked
	}
	return session, nil
}

func (m *mockSessionRepository) Revoke(ctx context.Context, token string) error {
	session, exists := m.sessions[token]
	if !exists {
		return repository.ErrSessionNotFound
	}
	session.Revoked = true
	return nil
}

// contextWithUsername mirrors what AuthMiddleware puts on the context
func contextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, middleware.UsernameKey, username)
}

func newTestAccountHandler() (*AccountHandler, service.AccountService) {
	accountRepo := newMockAccountRepository()
	sessionRepo := newMockSessionRepository()
	accountService := service.NewAccountService(accountRepo, sessionRepo, "test-secret")
	logger, _ := zap.NewDevelopment()
	return NewAccountHandler(accountService, logger), accountService
}

func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("registration with invalid data returns validation errors", prop.ForAll(
		func(invalidCase int) bool {
			handler, _ := newTestAccountHandler()

			var reqBody RegisterRequest

			switch invalidCase % 4 {
			case 0:
				// Empty username
				reqBody = RegisterRequest{
					Username: "",
					Password: "ValidPass123",
					Role:     "customer",
					FullName: "John Doe",
				}
			case 1:
				// Empty password
				reqBody = RegisterRequest{
					Username: "johndoe",
					Password: "",
					Role:     "customer",
					FullName: "John Doe",
				}
			case 2:
				// Missing role
				reqBody = RegisterRequest{
					Username: "johndoe",
					Password: "ValidPass123",
					FullName: "John Doe",
				}
			case 3:
				// Missing full name
				reqBody = RegisterRequest{
					Username: "johndoe",
					Password: "ValidPass123",
					Role:     "customer",
				}
			}

			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/accounts/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Register(w, req)

			if w.Code != http.StatusBadRequest {
				t.Logf("FAIL: Expected 400 status code, got %d", w.Code)
				return false
			}

			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("FAIL: Could not decode error response: %v", err)
				return false
			}

			if _, exists := response["error"]; !exists {
				t.Logf("FAIL: Response missing 'error' field")
				return false
			}

			return true
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SuccessfulRegistrationReturnsProfileData(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("successful registration returns the account profile without the password", prop.ForAll(
		func(username string, password string, fullName string) bool {
			handler, _ := newTestAccountHandler()

			reqBody := RegisterRequest{
				Username: username,
				Password: password,
				Role:     "customer",
				FullName: fullName,
			}
			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/accounts/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Register(w, req)

			if w.Code != http.StatusCreated {
				t.Logf("FAIL: Expected 201 status code, got %d", w.Code)
				return false
			}

			var response RegisterResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("FAIL: Could not decode response: %v", err)
				return false
			}

			if response.Message != "User created successfully!" {
				t.Logf("FAIL: Unexpected message: %s", response.Message)
				return false
			}

			if response.Account.Username != username {
				t.Logf("FAIL: Username mismatch. Expected %s, got %s", username, response.Account.Username)
				return false
			}

			if response.Account.FullName != fullName {
				t.Logf("FAIL: FullName mismatch. Expected %s, got %s", fullName, response.Account.FullName)
				return false
			}

			if response.Account.Role != "customer" {
				t.Logf("FAIL: Role mismatch, got %s", response.Account.Role)
				return false
			}

			// The raw body must never leak the password in any form
			raw := w.Body.String()
			if bytes.Contains([]byte(raw), []byte("password_hash")) {
				t.Logf("FAIL: Response leaked the password hash")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,12}`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidLoginReturnsBothTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid login returns access token and refresh token", prop.ForAll(
		func(username string, password string) bool {
			handler, accountService := newTestAccountHandler()

			_, err := accountService.Register(context.Background(), username, password, "customer", "Login Tester", "", "")
			if err != nil {
				return true
			}

			loginReq := LoginRequest{
				Username: username,
				Password: password,
			}
			body, _ := json.Marshal(loginReq)
			req := httptest.NewRequest(http.MethodPost, "/api/accounts/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Login(w, req)

			if w.Code != http.StatusOK {
				t.Logf("FAIL: Expected 200 status code, got %d", w.Code)
				return false
			}

			var loginResp LoginResponse
			if err := json.NewDecoder(w.Body).Decode(&loginResp); err != nil {
				t.Logf("FAIL: Could not decode login response: %v", err)
				return false
			}

			if loginResp.AccessToken == "" {
				t.Logf("FAIL: Access token is empty")
				return false
			}

			if loginResp.RefreshToken == "" {
				t.Logf("FAIL: Refresh token is empty")
				return false
			}

			if loginResp.Account.Username != username {
				t.Logf("FAIL: Account username mismatch")
				return false
			}

			claims, err := accountService.ValidateToken(loginResp.AccessToken)
			if err != nil {
				t.Logf("FAIL: Access token validation failed: %v", err)
				return false
			}

			if claims.Username != username {
				t.Logf("FAIL: Token username doesn't match profile username")
				return false
			}

			newAccessToken, err := accountService.RefreshToken(context.Background(), loginResp.RefreshToken)
			if err != nil {
				t.Logf("FAIL: Refresh token is not valid: %v", err)
				return false
			}

			if newAccessToken == "" {
				t.Logf("FAIL: Refresh token returned empty access token")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,12}`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLoginWithWrongPasswordIsUnauthorized(t *testing.T) {
	handler, accountService := newTestAccountHandler()

	_, err := accountService.Register(context.Background(), "carol", "correct-horse", "customer", "Carol", "", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	loginReq := LoginRequest{Username: "carol", Password: "battery-staple"}
	body, _ := json.Marshal(loginReq)
	req := httptest.NewRequest(http.MethodPost, "/api/accounts/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestDuplicateRegistrationIsConflict(t *testing.T) {
	handler, _ := newTestAccountHandler()

	reqBody := RegisterRequest{
		Username: "dave",
		Password: "password123",
		Role:     "customer",
		FullName: "Dave",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Register(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("First registration should succeed, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/accounts/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	handler.Register(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("Second registration should be 409, got %d", w.Code)
	}
}

func TestUpdateProfileUsesAuthenticatedUsername(t *testing.T) {
	handler, accountService := newTestAccountHandler()

	_, err := accountService.Register(context.Background(), "erin", "password123", "customer", "Erin Before", "", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	updateReq := UpdateProfileRequest{
		FullName:    "Erin After",
		Address:     "5 Oak Lane",
		PaymentInfo: "mastercard",
	}
	body, _ := json.Marshal(updateReq)
	req := httptest.NewRequest(http.MethodPut, "/api/accounts/profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(contextWithUsername(req.Context(), "erin"))
	w := httptest.NewRecorder()

	handler.UpdateProfile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	updated, err := accountService.FindByUsername(context.Background(), "erin")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if updated.FullName != "Erin After" || updated.Address != "5 Oak Lane" {
		t.Errorf("Profile was not updated: %+v", updated)
	}
}
