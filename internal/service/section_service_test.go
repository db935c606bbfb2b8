package service

import (
	"context"
	"testing"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/foyerapp/foyer-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSection_Success(t *testing.T) {
	svc := NewSectionService(testutil.NewMockSectionRepository(), testutil.NewMockCardRepository())

	section, err := svc.CreateSection(context.Background(), uuid.New(), "  Logement  ", 1)
	require.NoError(t, err)
	assert.Equal(t, "Logement", section.Name)
}

func TestCreateSection_EmptyName(t *testing.T) {
	svc := NewSectionService(testutil.NewMockSectionRepository(), testutil.NewMockCardRepository())

	_, err := svc.CreateSection(context.Background(), uuid.New(), "   ", 0)
	assert.Equal(t, domain.ErrNameRequired, err)
}

func TestCreateCard_Success(t *testing.T) {
	svc := NewSectionService(testutil.NewMockSectionRepository(), testutil.NewMockCardRepository())
	userID := uuid.New()

	card, err := svc.CreateCard(context.Background(), userID, "Carte bleue")
	require.NoError(t, err)
	assert.Equal(t, "Carte bleue", card.Name)

	cards, err := svc.GetCards(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}
