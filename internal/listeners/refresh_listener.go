package listeners

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"okr-console/internal/entities"
	"okr-console/internal/events"
	"okr-console/pkg/eventbus"
	"okr-console/pkg/websocket"
)

// Broadcaster: то, чем RefreshListener рассылает сообщения; на проде это *websocket.Hub.
type Broadcaster interface {
	Broadcast(payload interface{}, messageType string) error
}

type refreshGroup struct {
	events []events.EntityMutatedEvent
	timer  *time.Timer
}

// RefreshListener копит мутации одной коллекции в течение окна и шлёт
// открытым консолям одно сообщение table_refresh на всю пачку.
type RefreshListener struct {
	hub    Broadcaster
	window time.Duration
	logger *zap.Logger
	groups map[entities.EntityKind]*refreshGroup
	mu     sync.Mutex
}

func NewRefreshListener(hub Broadcaster, window time.Duration, logger *zap.Logger) *RefreshListener {
	return &RefreshListener{
		hub:    hub,
		window: window,
		logger: logger.Named("refresh_listener"),
		groups: make(map[entities.EntityKind]*refreshGroup),
	}
}

func (l *RefreshListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.EntityMutatedEvent{}.Name(), l.handleEntityMutated)
	l.logger.Info("RefreshListener подписан на событие", zap.String("event", events.EntityMutatedEvent{}.Name()))
}

func (l *RefreshListener) handleEntityMutated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.EntityMutatedEvent)
	if !ok {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	group, exists := l.groups[e.Kind]
	if !exists {
		group = &refreshGroup{}
		l.groups[e.Kind] = group
		kind := e.Kind
		group.timer = time.AfterFunc(l.window, func() {
			l.flush(kind)
		})
	}
	group.events = append(group.events, e)
	return nil
}

func (l *RefreshListener) flush(kind entities.EntityKind) {
	l.mu.Lock()
	group, exists := l.groups[kind]
	if !exists {
		l.mu.Unlock()
		return
	}
	delete(l.groups, kind)
	l.mu.Unlock()

	if len(group.events) == 0 {
		return
	}

	payload := websocket.TableRefreshPayload{Kind: string(kind)}
	seen := make(map[string]bool)
	for _, e := range group.events {
		if !seen[e.Action] {
			seen[e.Action] = true
			payload.Actions = append(payload.Actions, e.Action)
		}
		payload.IDs = append(payload.IDs, e.ID)
		if e.Group != nil {
			payload.Group = e.Group.String()
		}
		payload.ActorID = e.ActorID
	}

	if err := l.hub.Broadcast(payload, websocket.MessageTableRefresh); err != nil {
		l.logger.Error("Не удалось разослать table_refresh", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	l.logger.Debug("table_refresh разослан", zap.String("kind", string(kind)), zap.Int("events", len(group.events)))
}
