package testutil

import (
	"context"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[string]*domain.User
	ByID  map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name *string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:        uuid.New(),
		Auth0ID:   auth0ID,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// MockSectionRepository is a mock implementation of domain.SectionRepository
type MockSectionRepository struct {
	Sections map[int32]*domain.Section
	nextID   int32
}

// NewMockSectionRepository creates a new MockSectionRepository
func NewMockSectionRepository() *MockSectionRepository {
	return &MockSectionRepository{Sections: make(map[int32]*domain.Section)}
}

// Create creates a new section
func (m *MockSectionRepository) Create(ctx context.Context, s *domain.Section) (*domain.Section, error) {
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	m.Sections[s.ID] = s
	return s, nil
}

// GetByID retrieves a section by ID
func (m *MockSectionRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Section, error) {
	if s, ok := m.Sections[id]; ok && s.UserID == userID {
		return s, nil
	}
	return nil, domain.ErrSectionNotFound
}

// ListByUser retrieves the user's sections
func (m *MockSectionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Section, error) {
	var result []*domain.Section
	for _, s := range m.Sections {
		if s.UserID == userID {
			result = append(result, s)
		}
	}
	return result, nil
}

// MockCardRepository is a mock implementation of domain.CardRepository
type MockCardRepository struct {
	Cards  map[int32]*domain.Card
	nextID int32
}

// NewMockCardRepository creates a new MockCardRepository
func NewMockCardRepository() *MockCardRepository {
	return &MockCardRepository{Cards: make(map[int32]*domain.Card)}
}

// Create creates a new card
func (m *MockCardRepository) Create(ctx context.Context, c *domain.Card) (*domain.Card, error) {
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.Cards[c.ID] = c
	return c, nil
}

// GetByID retrieves a card by ID
func (m *MockCardRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Card, error) {
	if c, ok := m.Cards[id]; ok && c.UserID == userID {
		return c, nil
	}
	return nil, domain.ErrCardNotFound
}

// ListByUser retrieves the user's cards
func (m *MockCardRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	var result []*domain.Card
	for _, c := range m.Cards {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

// MockExpenseTemplateRepository is a mock implementation of
// domain.ExpenseTemplateRepository
type MockExpenseTemplateRepository struct {
	Templates map[int32]*domain.ExpenseTemplate
	nextID    int32
}

// NewMockExpenseTemplateRepository creates a new MockExpenseTemplateRepository
func NewMockExpenseTemplateRepository() *MockExpenseTemplateRepository {
	return &MockExpenseTemplateRepository{Templates: make(map[int32]*domain.ExpenseTemplate)}
}

// Create creates a new expense template
func (m *MockExpenseTemplateRepository) Create(ctx context.Context, t *domain.ExpenseTemplate) (*domain.ExpenseTemplate, error) {
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.Templates[t.ID] = t
	return t, nil
}

// GetByID retrieves an expense template by ID
func (m *MockExpenseTemplateRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.ExpenseTemplate, error) {
	if t, ok := m.Templates[id]; ok && t.UserID == userID {
		return t, nil
	}
	return nil, domain.ErrExpenseTemplateNotFound
}

// ListByUser retrieves the user's expense templates
func (m *MockExpenseTemplateRepository) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.ExpenseTemplate, error) {
	var result []*domain.ExpenseTemplate
	for _, t := range m.Templates {
		if t.UserID == userID && (!activeOnly || t.IsActive) {
			result = append(result, t)
		}
	}
	return result, nil
}

// ListActiveByType retrieves active templates of one type
func (m *MockExpenseTemplateRepository) ListActiveByType(ctx context.Context, userID uuid.UUID, typ domain.ExpenseType) ([]*domain.ExpenseTemplate, error) {
	var result []*domain.ExpenseTemplate
	for _, t := range m.Templates {
		if t.UserID == userID && t.IsActive && t.Type == typ {
			result = append(result, t)
		}
	}
	return result, nil
}

// Update updates an expense template
func (m *MockExpenseTemplateRepository) Update(ctx context.Context, t *domain.ExpenseTemplate) (*domain.ExpenseTemplate, error) {
	existing, ok := m.Templates[t.ID]
	if !ok || existing.UserID != t.UserID {
		return nil, domain.ErrExpenseTemplateNotFound
	}
	t.UpdatedAt = time.Now()
	m.Templates[t.ID] = t
	return t, nil
}

// Deactivate soft-deletes an expense template
func (m *MockExpenseTemplateRepository) Deactivate(ctx context.Context, userID uuid.UUID, id int32) error {
	t, ok := m.Templates[id]
	if !ok || t.UserID != userID {
		return domain.ErrExpenseTemplateNotFound
	}
	t.IsActive = false
	return nil
}

// EnsureFreePot returns the user's free pot, creating it on first access
func (m *MockExpenseTemplateRepository) EnsureFreePot(ctx context.Context, userID uuid.UUID) (*domain.ExpenseTemplate, error) {
	for _, t := range m.Templates {
		if t.UserID == userID && t.IsFreePot {
			return t, nil
		}
	}
	return m.Create(ctx, &domain.ExpenseTemplate{
		UserID:    userID,
		Name:      "Épargne libre",
		Type:      domain.ExpenseTypePlanned,
		IsFreePot: true,
		IsActive:  true,
	})
}

// MockIncomeTemplateRepository is a mock implementation of
// domain.IncomeTemplateRepository
type MockIncomeTemplateRepository struct {
	Templates map[int32]*domain.IncomeTemplate
	nextID    int32
}

// NewMockIncomeTemplateRepository creates a new MockIncomeTemplateRepository
func NewMockIncomeTemplateRepository() *MockIncomeTemplateRepository {
	return &MockIncomeTemplateRepository{Templates: make(map[int32]*domain.IncomeTemplate)}
}

// Create creates a new income template
func (m *MockIncomeTemplateRepository) Create(ctx context.Context, t *domain.IncomeTemplate) (*domain.IncomeTemplate, error) {
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.Templates[t.ID] = t
	return t, nil
}

// GetByID retrieves an income template by ID
func (m *MockIncomeTemplateRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.IncomeTemplate, error) {
	if t, ok := m.Templates[id]; ok && t.UserID == userID {
		return t, nil
	}
	return nil, domain.ErrIncomeTemplateNotFound
}

// ListByUser retrieves the user's income templates
func (m *MockIncomeTemplateRepository) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.IncomeTemplate, error) {
	var result []*domain.IncomeTemplate
	for _, t := range m.Templates {
		if t.UserID == userID && (!activeOnly || t.IsActive) {
			result = append(result, t)
		}
	}
	return result, nil
}

// ListActiveFixed retrieves active non-variable templates
func (m *MockIncomeTemplateRepository) ListActiveFixed(ctx context.Context, userID uuid.UUID) ([]*domain.IncomeTemplate, error) {
	var result []*domain.IncomeTemplate
	for _, t := range m.Templates {
		if t.UserID == userID && t.IsActive && t.Frequency != domain.IncomeFrequencyVariable {
			result = append(result, t)
		}
	}
	return result, nil
}

// Update updates an income template
func (m *MockIncomeTemplateRepository) Update(ctx context.Context, t *domain.IncomeTemplate) (*domain.IncomeTemplate, error) {
	existing, ok := m.Templates[t.ID]
	if !ok || existing.UserID != t.UserID {
		return nil, domain.ErrIncomeTemplateNotFound
	}
	t.UpdatedAt = time.Now()
	m.Templates[t.ID] = t
	return t, nil
}

// Deactivate soft-deletes an income template
func (m *MockIncomeTemplateRepository) Deactivate(ctx context.Context, userID uuid.UUID, id int32) error {
	t, ok := m.Templates[id]
	if !ok || t.UserID != userID {
		return domain.ErrIncomeTemplateNotFound
	}
	t.IsActive = false
	return nil
}

// MockExpenseInstanceRepository is a mock implementation of
// domain.ExpenseInstanceRepository. The Fn fields let tests inject
// races and failures.
type MockExpenseInstanceRepository struct {
	Instances        map[int32]*domain.MonthlyExpenseInstance
	nextID           int32
	InsertIfAbsentFn func(inst *domain.MonthlyExpenseInstance) (bool, error)
	UpdateStatusFn   func(id int32, from []domain.ExpenseStatus, to domain.ExpenseStatus) (*domain.MonthlyExpenseInstance, error)
}

// NewMockExpenseInstanceRepository creates a new MockExpenseInstanceRepository
func NewMockExpenseInstanceRepository() *MockExpenseInstanceRepository {
	return &MockExpenseInstanceRepository{Instances: make(map[int32]*domain.MonthlyExpenseInstance)}
}

// InsertIfAbsent inserts the instance unless its month key is taken
func (m *MockExpenseInstanceRepository) InsertIfAbsent(ctx context.Context, inst *domain.MonthlyExpenseInstance) (bool, error) {
	if m.InsertIfAbsentFn != nil {
		return m.InsertIfAbsentFn(inst)
	}
	for _, existing := range m.Instances {
		if existing.Month != inst.Month {
			continue
		}
		if inst.TemplateID != nil && existing.TemplateID != nil && *existing.TemplateID == *inst.TemplateID {
			return false, nil
		}
		if inst.DebtID != nil && existing.DebtID != nil && *existing.DebtID == *inst.DebtID {
			return false, nil
		}
	}
	m.insert(inst)
	return true, nil
}

// Create inserts an ad-hoc instance
func (m *MockExpenseInstanceRepository) Create(ctx context.Context, inst *domain.MonthlyExpenseInstance) (*domain.MonthlyExpenseInstance, error) {
	m.insert(inst)
	return inst, nil
}

func (m *MockExpenseInstanceRepository) insert(inst *domain.MonthlyExpenseInstance) {
	m.nextID++
	inst.ID = m.nextID
	inst.CreatedAt = time.Now()
	inst.UpdatedAt = inst.CreatedAt
	m.Instances[inst.ID] = inst
}

// GetByID retrieves an expense instance by ID
func (m *MockExpenseInstanceRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.MonthlyExpenseInstance, error) {
	if inst, ok := m.Instances[id]; ok && inst.UserID == userID {
		return inst, nil
	}
	return nil, domain.ErrInstanceNotFound
}

// ListByMonth retrieves the user's expense instances for a month
func (m *MockExpenseInstanceRepository) ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*domain.MonthlyExpenseInstance, error) {
	var result []*domain.MonthlyExpenseInstance
	for _, inst := range m.Instances {
		if inst.UserID == userID && inst.Month == month {
			result = append(result, inst)
		}
	}
	return result, nil
}

// UpdateStatus transitions the instance, guarded on the current status
func (m *MockExpenseInstanceRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, id int32, from []domain.ExpenseStatus, to domain.ExpenseStatus, paidAt *time.Time) (*domain.MonthlyExpenseInstance, error) {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(id, from, to)
	}
	inst, ok := m.Instances[id]
	if !ok || inst.UserID != userID {
		return nil, domain.ErrInstanceNotFound
	}
	guarded := false
	for _, s := range from {
		if inst.Status == s {
			guarded = true
			break
		}
	}
	if !guarded {
		return nil, domain.ErrInstanceNotFound
	}
	inst.Status = to
	inst.PaidAt = paidAt
	inst.UpdatedAt = time.Now()
	return inst, nil
}

// MockIncomeInstanceRepository is a mock implementation of
// domain.IncomeInstanceRepository
type MockIncomeInstanceRepository struct {
	Instances map[int32]*domain.MonthlyIncomeInstance
	nextID    int32
}

// NewMockIncomeInstanceRepository creates a new MockIncomeInstanceRepository
func NewMockIncomeInstanceRepository() *MockIncomeInstanceRepository {
	return &MockIncomeInstanceRepository{Instances: make(map[int32]*domain.MonthlyIncomeInstance)}
}

// InsertIfAbsent inserts the instance unless its (income, month) key is taken
func (m *MockIncomeInstanceRepository) InsertIfAbsent(ctx context.Context, inst *domain.MonthlyIncomeInstance) (bool, error) {
	for _, existing := range m.Instances {
		if existing.IncomeID == inst.IncomeID && existing.Month == inst.Month {
			return false, nil
		}
	}
	m.insert(inst)
	return true, nil
}

func (m *MockIncomeInstanceRepository) insert(inst *domain.MonthlyIncomeInstance) {
	m.nextID++
	inst.ID = m.nextID
	inst.CreatedAt = time.Now()
	inst.UpdatedAt = inst.CreatedAt
	m.Instances[inst.ID] = inst
}

// GetByID retrieves an income instance by ID
func (m *MockIncomeInstanceRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.MonthlyIncomeInstance, error) {
	if inst, ok := m.Instances[id]; ok && inst.UserID == userID {
		return inst, nil
	}
	return nil, domain.ErrIncomeInstanceNotFound
}

// ListByMonth retrieves the user's income instances for a month
func (m *MockIncomeInstanceRepository) ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*domain.MonthlyIncomeInstance, error) {
	var result []*domain.MonthlyIncomeInstance
	for _, inst := range m.Instances {
		if inst.UserID == userID && inst.Month == month {
			result = append(result, inst)
		}
	}
	return result, nil
}

// MarkReceived records the actual amount and resulting status
func (m *MockIncomeInstanceRepository) MarkReceived(ctx context.Context, userID uuid.UUID, id int32, actual decimal.Decimal, status domain.IncomeStatus, receivedAt time.Time) (*domain.MonthlyIncomeInstance, error) {
	inst, ok := m.Instances[id]
	if !ok || inst.UserID != userID {
		return nil, domain.ErrIncomeInstanceNotFound
	}
	inst.ActualAmount = &actual
	inst.Status = status
	inst.ReceivedAt = &receivedAt
	inst.UpdatedAt = time.Now()
	return inst, nil
}

// UpsertReceived inserts or updates the instance keyed on (income, month)
func (m *MockIncomeInstanceRepository) UpsertReceived(ctx context.Context, inst *domain.MonthlyIncomeInstance) (*domain.MonthlyIncomeInstance, error) {
	for _, existing := range m.Instances {
		if existing.IncomeID == inst.IncomeID && existing.Month == inst.Month {
			existing.ExpectedAmount = inst.ExpectedAmount
			existing.ActualAmount = inst.ActualAmount
			existing.Status = inst.Status
			existing.ReceivedAt = inst.ReceivedAt
			existing.UpdatedAt = time.Now()
			return existing, nil
		}
	}
	m.insert(inst)
	return inst, nil
}

// MockDebtRepository is a mock implementation of domain.DebtRepository.
// It shares the instance store so SettleInstance and RevertInstance can
// mirror the production repository's combined writes.
type MockDebtRepository struct {
	Debts        map[int32]*domain.DebtTemplate
	Transactions map[int32][]*domain.DebtTransaction
	Instances    *MockExpenseInstanceRepository
	nextID       int32
	nextTxnID    int32
	// ApplyTransactionErr, when set, fails the next ledger write.
	ApplyTransactionErr error
}

// NewMockDebtRepository creates a new MockDebtRepository sharing the
// given instance store
func NewMockDebtRepository(instances *MockExpenseInstanceRepository) *MockDebtRepository {
	return &MockDebtRepository{
		Debts:        make(map[int32]*domain.DebtTemplate),
		Transactions: make(map[int32][]*domain.DebtTransaction),
		Instances:    instances,
	}
}

// Create creates a new debt
func (m *MockDebtRepository) Create(ctx context.Context, d *domain.DebtTemplate) (*domain.DebtTemplate, error) {
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.Debts[d.ID] = d
	return d, nil
}

// GetByID retrieves a debt by ID
func (m *MockDebtRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.DebtTemplate, error) {
	if d, ok := m.Debts[id]; ok && d.UserID == userID {
		return d, nil
	}
	return nil, domain.ErrDebtNotFound
}

// ListByUser retrieves the user's debts
func (m *MockDebtRepository) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.DebtTemplate, error) {
	var result []*domain.DebtTemplate
	for _, d := range m.Debts {
		if d.UserID == userID && (!activeOnly || d.IsActive) {
			result = append(result, d)
		}
	}
	return result, nil
}

// Update updates a debt
func (m *MockDebtRepository) Update(ctx context.Context, d *domain.DebtTemplate) (*domain.DebtTemplate, error) {
	existing, ok := m.Debts[d.ID]
	if !ok || existing.UserID != d.UserID {
		return nil, domain.ErrDebtNotFound
	}
	d.UpdatedAt = time.Now()
	m.Debts[d.ID] = d
	return d, nil
}

// Deactivate soft-deletes a debt
func (m *MockDebtRepository) Deactivate(ctx context.Context, userID uuid.UUID, id int32) error {
	d, ok := m.Debts[id]
	if !ok || d.UserID != userID {
		return domain.ErrDebtNotFound
	}
	d.IsActive = false
	return nil
}

func (m *MockDebtRepository) appendTransaction(txn *domain.DebtTransaction) *domain.DebtTransaction {
	m.nextTxnID++
	txn.ID = m.nextTxnID
	txn.CreatedAt = time.Now()
	m.Transactions[txn.DebtID] = append(m.Transactions[txn.DebtID], txn)
	return txn
}

func (m *MockDebtRepository) setBalance(debtID int32, balance decimal.Decimal, active bool) {
	if d, ok := m.Debts[debtID]; ok {
		d.RemainingBalance = balance
		d.IsActive = active
		d.UpdatedAt = time.Now()
	}
}

// moveBalance applies the transaction's delta to the stored balance,
// like the production repository's relative UPDATE: payments clamp at
// zero and retire the debt there, charges above zero reactivate it.
func (m *MockDebtRepository) moveBalance(txn *domain.DebtTransaction) {
	d, ok := m.Debts[txn.DebtID]
	if !ok {
		return
	}
	next := txn.NextBalance(d.RemainingBalance)
	m.setBalance(txn.DebtID, next, next.IsPositive())
}

// ApplyTransaction appends the ledger row and moves the balance
func (m *MockDebtRepository) ApplyTransaction(ctx context.Context, txn *domain.DebtTransaction) (*domain.DebtTransaction, error) {
	if m.ApplyTransactionErr != nil {
		return nil, m.ApplyTransactionErr
	}
	if _, ok := m.Debts[txn.DebtID]; !ok {
		return nil, domain.ErrDebtNotFound
	}
	created := m.appendTransaction(txn)
	m.moveBalance(txn)
	return created, nil
}

// ListTransactions returns the debt's ledger, oldest first
func (m *MockDebtRepository) ListTransactions(ctx context.Context, userID uuid.UUID, debtID int32) ([]*domain.DebtTransaction, error) {
	return m.Transactions[debtID], nil
}

// SettleInstance marks the instance paid, appends the payment row and
// moves the balance; all or nothing
func (m *MockDebtRepository) SettleInstance(ctx context.Context, userID uuid.UUID, instanceID int32, paidAt time.Time, txn *domain.DebtTransaction) (*domain.MonthlyExpenseInstance, error) {
	if m.ApplyTransactionErr != nil {
		return nil, m.ApplyTransactionErr
	}
	inst, ok := m.Instances.Instances[instanceID]
	if !ok || inst.UserID != userID {
		return nil, domain.ErrInstanceNotFound
	}
	if inst.Status == domain.ExpenseStatusPaid {
		return nil, domain.ErrInstanceAlreadyPaid
	}
	inst.Status = domain.ExpenseStatusPaid
	inst.PaidAt = &paidAt
	inst.UpdatedAt = time.Now()
	m.appendTransaction(txn)
	m.moveBalance(txn)
	return inst, nil
}

// RevertInstance reverts a paid instance to upcoming, appends the
// reversal row and restores the balance
func (m *MockDebtRepository) RevertInstance(ctx context.Context, userID uuid.UUID, instanceID int32, txn *domain.DebtTransaction) (*domain.MonthlyExpenseInstance, error) {
	if m.ApplyTransactionErr != nil {
		return nil, m.ApplyTransactionErr
	}
	inst, ok := m.Instances.Instances[instanceID]
	if !ok || inst.UserID != userID {
		return nil, domain.ErrInstanceNotFound
	}
	if inst.Status != domain.ExpenseStatusPaid {
		return nil, domain.ErrInstanceNotFound
	}
	inst.Status = domain.ExpenseStatusUpcoming
	inst.PaidAt = nil
	inst.UpdatedAt = time.Now()
	m.appendTransaction(txn)
	m.moveBalance(txn)
	return inst, nil
}

// SetBalance overwrites the stored balance
func (m *MockDebtRepository) SetBalance(ctx context.Context, userID uuid.UUID, debtID int32, balance decimal.Decimal, active bool) error {
	d, ok := m.Debts[debtID]
	if !ok || d.UserID != userID {
		return domain.ErrDebtNotFound
	}
	m.setBalance(debtID, balance, active)
	return nil
}

// MockSavingsRepository is a mock implementation of
// domain.SavingsRepository. It shares the template store so pot
// balances move with the ledger exactly like the production repository.
// FailSecondLeg makes the next transfer fail after the debit leg would
// have been written, proving neither leg survives. SumByPotFn lets
// tests feed the caller a stale ledger sum.
type MockSavingsRepository struct {
	Contributions []*domain.SavingsContribution
	Pots          *MockExpenseTemplateRepository
	nextID        int32
	FailSecondLeg bool
	SecondLegErr  error
	SumByPotFn    func(potID int32) (decimal.Decimal, error)
}

// NewMockSavingsRepository creates a new MockSavingsRepository sharing
// the given pot store
func NewMockSavingsRepository(pots *MockExpenseTemplateRepository) *MockSavingsRepository {
	return &MockSavingsRepository{Pots: pots}
}

func (m *MockSavingsRepository) append(c *domain.SavingsContribution) *domain.SavingsContribution {
	m.nextID++
	c.ID = m.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.Contributions = append(m.Contributions, c)
	if pot, ok := m.Pots.Templates[c.PotID]; ok {
		pot.SavedAmount = pot.SavedAmount.Add(c.Amount)
	}
	return c
}

// CreateContribution appends the entry and moves the pot balance
func (m *MockSavingsRepository) CreateContribution(ctx context.Context, c *domain.SavingsContribution) (*domain.SavingsContribution, error) {
	if _, ok := m.Pots.Templates[c.PotID]; !ok {
		return nil, domain.ErrPotNotFound
	}
	return m.append(c), nil
}

// CreateTransferPair appends both legs and moves both balances, or
// neither when the injected failure fires. The debit is refused when
// the stored balance no longer covers it, like the production
// repository's guarded UPDATE.
func (m *MockSavingsRepository) CreateTransferPair(ctx context.Context, debit, credit *domain.SavingsContribution) (*domain.SavingsContribution, *domain.SavingsContribution, error) {
	fromPot, ok := m.Pots.Templates[debit.PotID]
	if !ok {
		return nil, nil, domain.ErrPotNotFound
	}
	if _, ok := m.Pots.Templates[credit.PotID]; !ok {
		return nil, nil, domain.ErrPotNotFound
	}
	if fromPot.SavedAmount.Add(debit.Amount).IsNegative() {
		return nil, nil, domain.ErrInsufficientFunds
	}
	if m.FailSecondLeg {
		return nil, nil, m.SecondLegErr
	}
	d := m.append(debit)
	c := m.append(credit)
	return d, c, nil
}

// ListByPot returns the pot's contributions, newest first
func (m *MockSavingsRepository) ListByPot(ctx context.Context, userID uuid.UUID, potID int32) ([]*domain.SavingsContribution, error) {
	var result []*domain.SavingsContribution
	for i := len(m.Contributions) - 1; i >= 0; i-- {
		c := m.Contributions[i]
		if c.UserID == userID && c.PotID == potID {
			result = append(result, c)
		}
	}
	return result, nil
}

// SumByPot returns the replay balance of the pot
func (m *MockSavingsRepository) SumByPot(ctx context.Context, userID uuid.UUID, potID int32) (decimal.Decimal, error) {
	if m.SumByPotFn != nil {
		return m.SumByPotFn(potID)
	}
	sum := decimal.Zero
	for _, c := range m.Contributions {
		if c.UserID == userID && c.PotID == potID {
			sum = sum.Add(c.Amount)
		}
	}
	return sum, nil
}

// SetPotBalance overwrites the denormalized savedAmount
func (m *MockSavingsRepository) SetPotBalance(ctx context.Context, userID uuid.UUID, potID int32, balance decimal.Decimal) error {
	pot, ok := m.Pots.Templates[potID]
	if !ok || pot.UserID != userID {
		return domain.ErrPotNotFound
	}
	pot.SavedAmount = balance
	return nil
}
