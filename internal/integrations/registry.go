package integrations

import (
	"fmt"
	"sync"
)

// RegistryInterface: набор доступных клиентов хранилища и выбор активного.
type RegistryInterface interface {
	Register(provider StoreProvider) error
	Get(name string) (StoreProvider, error)
	SetActive(name string) error
	GetActive() (StoreProvider, error)
}

type Registry struct {
	providers map[string]StoreProvider
	active    string
	mu        sync.RWMutex
}

func NewRegistry() RegistryInterface {
	return &Registry{
		providers: make(map[string]StoreProvider),
	}
}

func (r *Registry) Register(provider StoreProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("провайдер с именем '%s' уже зарегистрирован", name)
	}
	r.providers[name] = provider
	return nil
}

func (r *Registry) Get(name string) (StoreProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("провайдер с именем '%s' не найден", name)
	}
	return provider, nil
}

func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return fmt.Errorf("невозможно установить активным провайдера '%s': он не зарегистрирован", name)
	}
	r.active = name
	return nil
}

func (r *Registry) GetActive() (StoreProvider, error) {
	r.mu.RLock()
	activeName := r.active
	r.mu.RUnlock()

	if activeName == "" {
		return nil, fmt.Errorf("активный провайдер не установлен")
	}
	return r.Get(activeName)
}
