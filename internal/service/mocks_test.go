package service

import (
	"context"

	"mall-api/internal/domain"
	"mall-api/internal/repository"

	"github.com/google/uuid"
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

type mockProductRepository struct {
	products []*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, existing := range m.products {
		if existing.Name == product.Name {
			return repository.ErrDuplicateProduct
		}
	}
	m.products = append(m.products, product)
	return nil
}

func (m *mockProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, existing := range m.products {
		if existing.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	listed := make([]*domain.Product, len(m.products))
	copy(listed, m.products)
	return listed, nil
}

func (m *mockProductRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	var kept []*domain.Product
	var deleted int64
	for _, existing := range m.products {
		if existing.Name == name {
			deleted++
			continue
		}
		kept = append(kept, existing)
	}
	m.products = kept
	return deleted, nil
}

type mockPurchaseRepository struct {
	records []*domain.PurchaseRecord
}

func newMockPurchaseRepository() *mockPurchaseRepository {
	return &mockPurchaseRepository{}
}

func (m *mockPurchaseRepository) Create(ctx context.Context, record *domain.PurchaseRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *mockPurchaseRepository) ListByUser(ctx context.Context, userName string) ([]*domain.PurchaseRecord, error) {
	var listed []*domain.PurchaseRecord
	for _, record := range m.records {
		if record.UserName == userName {
			listed = append(listed, record)
		}
	}
	return listed, nil
}
