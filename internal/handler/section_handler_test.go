package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/service"
	"github.com/foyerapp/foyer-backend/internal/testutil"
	"github.com/google/uuid"
)

func newSectionHandler() *SectionHandler {
	sectionRepo := testutil.NewMockSectionRepository()
	cardRepo := testutil.NewMockCardRepository()
	return NewSectionHandler(service.NewSectionService(sectionRepo, cardRepo))
}

func TestCreateSection_Success(t *testing.T) {
	e := newTestEcho()
	handler := newSectionHandler()
	userID := uuid.New()

	body := `{"name":"Logement","sortOrder":1}`
	req := newJSONRequest(http.MethodPost, "/api/v1/sections", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.CreateSection(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response domain.Section
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Logement" {
		t.Errorf("Expected name 'Logement', got %s", response.Name)
	}
}

func TestCreateSection_BlankName(t *testing.T) {
	e := newTestEcho()
	handler := newSectionHandler()

	body := `{"name":"   "}`
	req := newJSONRequest(http.MethodPost, "/api/v1/sections", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := handler.CreateSection(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetSections_UserIsolation(t *testing.T) {
	e := newTestEcho()
	sectionRepo := testutil.NewMockSectionRepository()
	cardRepo := testutil.NewMockCardRepository()
	handler := NewSectionHandler(service.NewSectionService(sectionRepo, cardRepo))

	userID := uuid.New()
	otherID := uuid.New()
	sectionRepo.Sections[1] = &domain.Section{ID: 1, UserID: userID, Name: "Logement"}
	sectionRepo.Sections[2] = &domain.Section{ID: 2, UserID: otherID, Name: "Transport"}

	req := newJSONRequest(http.MethodGet, "/api/v1/sections", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.GetSections(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response []*domain.Section
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(response))
	}
	if response[0].Name != "Logement" {
		t.Errorf("Expected user's own section, got %s", response[0].Name)
	}
}

func TestCreateCard_Success(t *testing.T) {
	e := newTestEcho()
	handler := newSectionHandler()

	body := `{"name":"Carte bleue"}`
	req := newJSONRequest(http.MethodPost, "/api/v1/cards", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := handler.CreateCard(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
}
