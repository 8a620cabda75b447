package services

import (
	"context"

	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/prudhvinik1/electoralsync/internal/repositories"
)

// ElectoralService is the read path over synced reference data. Empty results are
// empty slices; a missing current election is nil, not an error.
type ElectoralService struct {
	repo     repositories.ElectoralEventRepository
	contexts *ElectoralContextProvider
}

func NewElectoralService(repo repositories.ElectoralEventRepository, contexts *ElectoralContextProvider) *ElectoralService {
	return &ElectoralService{repo: repo, contexts: contexts}
}

func (s *ElectoralService) GetElectoralEventTypes(ctx context.Context) ([]*models.ElectoralEventType, error) {
	return s.repo.GetElectoralEventTypes(ctx)
}

func (s *ElectoralService) GetMunicipalElectionTypes(ctx context.Context) ([]*models.ElectoralEventType, error) {
	return s.repo.GetMunicipalElectionTypes(ctx)
}

// GetElectoralEventsByType takes the commission event type id.
func (s *ElectoralService) GetElectoralEventsByType(ctx context.Context, eventTypeID int) ([]*models.ElectoralEvent, error) {
	if !validExternalID(eventTypeID) {
		return nil, ErrInvalidEventTypeID
	}
	return s.repo.GetElectoralEventsByType(ctx, eventTypeID)
}

func (s *ElectoralService) GetActiveMunicipalElections(ctx context.Context) ([]*models.ElectoralEvent, error) {
	return s.repo.GetActiveMunicipalElections(ctx)
}

// GetCurrentMunicipalElection is served from the election context cache.
func (s *ElectoralService) GetCurrentMunicipalElection(ctx context.Context) (*models.ElectoralEvent, error) {
	return s.contexts.CurrentElection(ctx)
}

func (s *ElectoralService) GetMunicipalElectionHistory(ctx context.Context) ([]*models.ElectoralEvent, error) {
	return s.repo.GetMunicipalElectionHistory(ctx)
}

func (s *ElectoralService) GetStatistics(ctx context.Context) (*models.ElectoralStatistics, error) {
	return s.repo.GetStatistics(ctx)
}
