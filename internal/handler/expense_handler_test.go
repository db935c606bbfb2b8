package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/service"
	"github.com/foyerapp/foyer-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newExpenseHandler() (*ExpenseHandler, *testutil.MockExpenseTemplateRepository, *testutil.MockExpenseInstanceRepository) {
	templateRepo := testutil.NewMockExpenseTemplateRepository()
	instanceRepo := testutil.NewMockExpenseInstanceRepository()
	incomeInstanceRepo := testutil.NewMockIncomeInstanceRepository()
	incomeTemplateRepo := testutil.NewMockIncomeTemplateRepository()
	debtRepo := testutil.NewMockDebtRepository(instanceRepo)
	templateService := service.NewExpenseTemplateService(templateRepo)
	ledgerService := service.NewLedgerService(instanceRepo, incomeInstanceRepo, incomeTemplateRepo, debtRepo)
	return NewExpenseHandler(templateService, ledgerService), templateRepo, instanceRepo
}

func TestCreateTemplate_Success(t *testing.T) {
	e := newTestEcho()
	handler, _, _ := newExpenseHandler()
	userID := uuid.New()

	body := `{"name":"Loyer","amount":"900","type":"recurring","recurrence":{"frequency":"monthly","anchorDay":5},"autoDebit":true}`
	req := newJSONRequest(http.MethodPost, "/api/v1/expenses", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.CreateTemplate(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response domain.ExpenseTemplate
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Loyer" {
		t.Errorf("Expected name 'Loyer', got %s", response.Name)
	}
	if !response.Amount.Equal(decimal.NewFromInt(900)) {
		t.Errorf("Expected amount 900, got %s", response.Amount)
	}
	if response.Recurrence == nil || response.Recurrence.AnchorDay != 5 {
		t.Errorf("Expected anchor day 5, got %+v", response.Recurrence)
	}
}

func TestCreateTemplate_RecurringWithoutRule(t *testing.T) {
	e := newTestEcho()
	handler, _, _ := newExpenseHandler()

	body := `{"name":"Loyer","amount":"900","type":"recurring"}`
	req := newJSONRequest(http.MethodPost, "/api/v1/expenses", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := handler.CreateTemplate(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	assertProblemType(t, rec.Body.Bytes(), ErrorTypeValidation)
}

func TestCreateTemplate_InvalidAmount(t *testing.T) {
	e := newTestEcho()
	handler, _, _ := newExpenseHandler()

	body := `{"name":"Loyer","amount":"not-a-number","type":"recurring","recurrence":{"frequency":"monthly","anchorDay":5}}`
	req := newJSONRequest(http.MethodPost, "/api/v1/expenses", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := handler.CreateTemplate(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateTemplate_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	handler, _, _ := newExpenseHandler()

	body := `{"name":"Loyer","amount":"900","type":"recurring","recurrence":{"frequency":"monthly","anchorDay":5}}`
	req := newJSONRequest(http.MethodPost, "/api/v1/expenses", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateTemplate(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestGetTemplates_ActiveOnlyByDefault(t *testing.T) {
	e := newTestEcho()
	handler, templateRepo, _ := newExpenseHandler()
	userID := uuid.New()

	templateRepo.Templates[1] = &domain.ExpenseTemplate{
		ID: 1, UserID: userID, Name: "Loyer", Type: domain.ExpenseTypeRecurring, IsActive: true,
	}
	templateRepo.Templates[2] = &domain.ExpenseTemplate{
		ID: 2, UserID: userID, Name: "Ancien abonnement", Type: domain.ExpenseTypeRecurring, IsActive: false,
	}

	req := newJSONRequest(http.MethodGet, "/api/v1/expenses", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.GetTemplates(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response []*domain.ExpenseTemplate
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Errorf("Expected 1 template, got %d", len(response))
	}
}

func TestGetTemplate_NotFound(t *testing.T) {
	e := newTestEcho()
	handler, _, _ := newExpenseHandler()

	req := newJSONRequest(http.MethodGet, "/api/v1/expenses/999", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("999")
	setupAuthContext(c, uuid.New())

	if err := handler.GetTemplate(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	assertProblemType(t, rec.Body.Bytes(), ErrorTypeNotFound)
}

func TestDeleteTemplate_Success(t *testing.T) {
	e := newTestEcho()
	handler, templateRepo, _ := newExpenseHandler()
	userID := uuid.New()

	templateRepo.Templates[1] = &domain.ExpenseTemplate{
		ID: 1, UserID: userID, Name: "Loyer", Type: domain.ExpenseTypeRecurring, IsActive: true,
	}

	req := newJSONRequest(http.MethodDelete, "/api/v1/expenses/1", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, userID)

	if err := handler.DeleteTemplate(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if templateRepo.Templates[1].IsActive {
		t.Error("Expected template to be deactivated")
	}
}

func TestPayInstance_Success(t *testing.T) {
	e := newTestEcho()
	handler, _, instanceRepo := newExpenseHandler()
	userID := uuid.New()

	templateID := int32(1)
	instanceRepo.Instances[1] = &domain.MonthlyExpenseInstance{
		ID: 1, UserID: userID, TemplateID: &templateID, Month: "2025-03",
		Name: "Loyer", Amount: decimal.NewFromInt(900),
		DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:  domain.ExpenseStatusUpcoming,
	}

	body := `{"paidAt":"2025-03-06"}`
	req := newJSONRequest(http.MethodPost, "/api/v1/instances/1/pay", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, userID)

	if err := handler.PayInstance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response domain.MonthlyExpenseInstance
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Status != domain.ExpenseStatusPaid {
		t.Errorf("Expected status paid, got %s", response.Status)
	}
	if response.PaidAt == nil || !response.PaidAt.Equal(time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected paidAt 2025-03-06, got %v", response.PaidAt)
	}
}

func TestPayInstance_AlreadyPaid(t *testing.T) {
	e := newTestEcho()
	handler, _, instanceRepo := newExpenseHandler()
	userID := uuid.New()

	paidAt := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)
	templateID := int32(1)
	instanceRepo.Instances[1] = &domain.MonthlyExpenseInstance{
		ID: 1, UserID: userID, TemplateID: &templateID, Month: "2025-03",
		Name: "Loyer", Amount: decimal.NewFromInt(900),
		DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:  domain.ExpenseStatusPaid, PaidAt: &paidAt,
	}

	req := newJSONRequest(http.MethodPost, "/api/v1/instances/1/pay", `{}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, userID)

	if err := handler.PayInstance(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
	assertProblemType(t, rec.Body.Bytes(), ErrorTypeConflict)
}

func TestPayInstance_InvalidID(t *testing.T) {
	e := newTestEcho()
	handler, _, _ := newExpenseHandler()

	req := newJSONRequest(http.MethodPost, "/api/v1/instances/abc/pay", `{}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	setupAuthContext(c, uuid.New())

	if err := handler.PayInstance(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestRevertInstance_Success(t *testing.T) {
	e := newTestEcho()
	handler, _, instanceRepo := newExpenseHandler()
	userID := uuid.New()

	paidAt := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)
	templateID := int32(1)
	instanceRepo.Instances[1] = &domain.MonthlyExpenseInstance{
		ID: 1, UserID: userID, TemplateID: &templateID, Month: "2025-03",
		Name: "Loyer", Amount: decimal.NewFromInt(900),
		DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:  domain.ExpenseStatusPaid, PaidAt: &paidAt,
	}

	req := newJSONRequest(http.MethodPost, "/api/v1/instances/1/revert", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, userID)

	if err := handler.RevertInstance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response domain.MonthlyExpenseInstance
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Status != domain.ExpenseStatusUpcoming {
		t.Errorf("Expected status upcoming, got %s", response.Status)
	}
	if response.PaidAt != nil {
		t.Errorf("Expected paidAt cleared, got %v", response.PaidAt)
	}
}

func TestCreateAdhocExpense_Success(t *testing.T) {
	e := newTestEcho()
	handler, _, _ := newExpenseHandler()
	userID := uuid.New()

	body := `{"name":"Réparation lave-linge","amount":"140","dueDate":"2025-03-12","paid":true}`
	req := newJSONRequest(http.MethodPost, "/api/v1/months/2025-03/expenses", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("month")
	c.SetParamValues("2025-03")
	setupAuthContext(c, userID)

	if err := handler.CreateAdhocExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response domain.MonthlyExpenseInstance
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Month != "2025-03" {
		t.Errorf("Expected month 2025-03, got %s", response.Month)
	}
	if response.Status != domain.ExpenseStatusPaid {
		t.Errorf("Expected status paid, got %s", response.Status)
	}
	if response.IsPlanned {
		t.Error("Expected ad-hoc instance to be unplanned")
	}
}

func TestCreateAdhocExpense_InvalidMonth(t *testing.T) {
	e := newTestEcho()
	handler, _, _ := newExpenseHandler()

	body := `{"name":"Réparation","amount":"140","dueDate":"2025-03-12"}`
	req := newJSONRequest(http.MethodPost, "/api/v1/months/march/expenses", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("month")
	c.SetParamValues("march")
	setupAuthContext(c, uuid.New())

	if err := handler.CreateAdhocExpense(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	assertProblemType(t, rec.Body.Bytes(), ErrorTypeValidation)
}
