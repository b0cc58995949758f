package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"okr-console/internal/entities"
	"okr-console/internal/integrations"
	intdto "okr-console/internal/integrations/dto"
	apperrors "okr-console/pkg/errors"
)

// OrgServiceInterface: плоские списки коллекций для орг-страниц и профиля.
type OrgServiceInterface interface {
	List(ctx context.Context, kind entities.EntityKind, search string) ([]intdto.Record, error)
	Children(ctx context.Context, kind entities.EntityKind, id string, child entities.EntityKind) ([]intdto.Record, error)
	Get(ctx context.Context, kind entities.EntityKind, id string) (*intdto.Record, error)
}

type OrgService struct {
	store  integrations.StoreProvider
	logger *zap.Logger
}

func NewOrgService(store integrations.StoreProvider, logger *zap.Logger) OrgServiceInterface {
	return &OrgService{store: store, logger: logger.Named("org")}
}

// List: вся коллекция; search фильтрует по подписи без учёта регистра.
func (s *OrgService) List(ctx context.Context, kind entities.EntityKind, search string) ([]intdto.Record, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidationFailure("kind", "неизвестная коллекция")
	}
	records, err := s.store.ListAll(ctx, kind)
	if err != nil {
		s.logger.Error("Ошибка при получении списка", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}
	records = dedupe(records)

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return records, nil
	}
	filtered := make([]intdto.Record, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Label()), needle) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

func (s *OrgService) Children(ctx context.Context, kind entities.EntityKind, id string, child entities.EntityKind) ([]intdto.Record, error) {
	if id == "" {
		return []intdto.Record{}, nil
	}
	records, err := s.store.ListChildren(ctx, kind, id, child)
	if err != nil {
		s.logger.Error("Ошибка при получении дочерних записей",
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.String("child", string(child)),
			zap.Error(err),
		)
		return nil, err
	}
	return dedupe(ownedBy(records, kind, id)), nil
}

func (s *OrgService) Get(ctx context.Context, kind entities.EntityKind, id string) (*intdto.Record, error) {
	if id == "" {
		return nil, apperrors.ErrNotFound
	}
	return s.store.GetOne(ctx, kind, id)
}
