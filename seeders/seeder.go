package seeders

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"okr-console/internal/entities"
	"okr-console/internal/services"
)

// Seeder наполняет хранилище демо-организацией через тот же синхронизатор,
// что и консоль: формы проходят проверку, RPE привязываются к группам,
// сотрудники получают членство в командах.
type Seeder struct {
	sync     services.SynchronizerInterface
	password string
	ids      map[string]string
	logger   *zap.Logger
}

func New(sync services.SynchronizerInterface, password string, logger *zap.Logger) *Seeder {
	return &Seeder{
		sync:     sync,
		password: password,
		ids:      make(map[string]string),
		logger:   logger.Named("seeder"),
	}
}

// IDs: соответствие локальных ключей и выданных хранилищем id.
func (s *Seeder) IDs() map[string]string {
	out := make(map[string]string, len(s.ids))
	for k, v := range s.ids {
		out[k] = v
	}
	return out
}

// SeedOrg создаёт компанию, департаменты, команды и сотрудников.
func (s *Seeder) SeedOrg(ctx context.Context) error {
	s.logger.Info("▶️  Наполнение оргструктуры")
	for _, item := range orgData {
		values := url.Values{}
		for field, v := range item.fields {
			values.Set(field, v)
		}
		if err := s.resolveRefs(values, item.refs); err != nil {
			return err
		}
		if err := s.create(ctx, item.key, item.kind, values, services.Scope{}); err != nil {
			return err
		}
	}

	for _, p := range peopleData {
		values := url.Values{
			"name":     {p.name},
			"email":    {p.email},
			"password": {s.password},
			"role":     {string(p.role)},
		}
		if err := s.resolveRefs(values, p.refs); err != nil {
			return err
		}
		if err := s.create(ctx, p.key, entities.KindPerson, values, services.Scope{}); err != nil {
			return err
		}
	}
	s.logger.Info("✅ Оргструктура создана", zap.Int("records", len(orgData)+len(peopleData)))
	return nil
}

// SeedGoals создаёт дерево целей. Требует SeedOrg в том же запуске.
func (s *Seeder) SeedGoals(ctx context.Context) error {
	s.logger.Info("▶️  Наполнение целей")
	for _, g := range goalData {
		values := url.Values{
			"name":        {g.name},
			"description": {g.description},
		}
		if g.goal != "" {
			values.Set("goal", g.goal)
		}
		if g.responsible != "" {
			if id, ok := s.ids[g.responsible]; ok {
				values.Set("responsible_id", id)
			}
		}

		scope := services.Scope{}
		if g.kind == entities.KindRPE {
			groupID, ok := s.ids[g.group]
			if !ok {
				return fmt.Errorf("seeders: группа %q для %q ещё не создана", g.group, g.key)
			}
			scope.Group = &entities.GroupRef{Type: g.groupType, ID: groupID}
		} else if err := s.resolveRefs(values, map[string]string{"parent_id": g.parent}); err != nil {
			return err
		}

		if err := s.create(ctx, g.key, g.kind, values, scope); err != nil {
			return err
		}
	}
	s.logger.Info("✅ Цели созданы", zap.Int("records", len(goalData)))
	return nil
}

func (s *Seeder) resolveRefs(values url.Values, refs map[string]string) error {
	for field, key := range refs {
		id, ok := s.ids[key]
		if !ok {
			return fmt.Errorf("seeders: запись %q ещё не создана", key)
		}
		values.Set(field, id)
	}
	return nil
}

func (s *Seeder) create(ctx context.Context, key string, kind entities.EntityKind, values url.Values, scope services.Scope) error {
	created, err := s.sync.Create(ctx, kind, values, scope, nil)
	if err != nil {
		s.logger.Error("❌ Не удалось создать запись", zap.String("key", key), zap.String("kind", string(kind)), zap.Error(err))
		return fmt.Errorf("seeders: %s %q: %w", kind, key, err)
	}
	s.ids[key] = created.ID
	s.logger.Debug("Запись создана", zap.String("key", key), zap.String("id", created.ID))
	return nil
}
