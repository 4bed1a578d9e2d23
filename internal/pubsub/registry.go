package pubsub

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownTopic возвращается при обращении к теме, которая не была объявлена в реестре.
	ErrUnknownTopic = errors.New("unknown topic")
	// ErrClosed возвращается после Close.
	ErrClosed = errors.New("registry closed")
)

// DefaultBuffer - ёмкость канала подписчика по умолчанию.
const DefaultBuffer = 8

// Filter вычисляет представление для конкретного подписчика из полного представления темы.
// false означает "этому подписчику ничего не отправлять".
type Filter func(view any) (any, bool)

// Option настраивает Registry.
type Option func(*Registry)

// WithBuffer задаёт ёмкость канала каждого подписчика.
func WithBuffer(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.buffer = n
		}
	}
}

type topic struct {
	// publishMu упорядочивает публикации в пределах одной темы
	publishMu sync.Mutex
	subs      map[uint64]*Subscription
}

// Registry хранит активных подписчиков по темам.
// Набор тем фиксируется при создании, подписка на необъявленную тему - ошибка.
type Registry struct {
	mu     sync.RWMutex
	topics map[string]*topic
	nextID uint64
	buffer int
	closed bool
}

// NewRegistry создаёт реестр с заранее объявленными темами.
func NewRegistry(topics []string, opts ...Option) *Registry {
	r := &Registry{
		topics: make(map[string]*topic, len(topics)),
		buffer: DefaultBuffer,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, name := range topics {
		r.topics[name] = &topic{subs: make(map[uint64]*Subscription)}
	}
	return r
}

// Topics возвращает имена объявленных тем.
func (r *Registry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.topics))
	for name := range r.topics {
		out = append(out, name)
	}
	return out
}

// Subscribe регистрирует подписчика. filter может быть nil - тогда подписчик
// получает полное представление темы.
func (r *Registry) Subscribe(name string, filter Filter) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	t, ok := r.topics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, name)
	}
	r.nextID++
	sub := &Subscription{
		id:     r.nextID,
		topic:  name,
		filter: filter,
		ch:     make(chan any, r.buffer),
	}
	t.subs[sub.id] = sub
	return sub, nil
}

// Unsubscribe удаляет подписчика и закрывает его канал. Повторный вызов ничего не делает.
func (r *Registry) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	r.mu.Lock()
	if t, ok := r.topics[sub.topic]; ok {
		delete(t.subs, sub.id)
	}
	r.mu.Unlock()

	sub.close()
}

// Publish доставляет view всем текущим подписчикам темы и возвращает число доставок.
// Набор подписчиков фиксируется в момент вызова: подписавшиеся во время доставки
// эту публикацию не получат.
func (r *Registry) Publish(name string, view any) (int, error) {
	r.mu.RLock()
	t, ok := r.topics[name]
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return 0, ErrClosed
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTopic, name)
	}

	t.publishMu.Lock()
	defer t.publishMu.Unlock()

	r.mu.RLock()
	snapshot := make([]*Subscription, 0, len(t.subs))
	for _, sub := range t.subs {
		snapshot = append(snapshot, sub)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, sub := range snapshot {
		v := view
		if sub.filter != nil {
			var keep bool
			if v, keep = sub.filter(view); !keep {
				continue
			}
		}
		if sub.deliver(v) {
			delivered++
		}
	}
	return delivered, nil
}

// Known сообщает, объявлена ли тема.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.topics[name]
	return ok
}

// Len возвращает число активных подписчиков темы.
func (r *Registry) Len(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.topics[name]; ok {
		return len(t.subs)
	}
	return 0
}

// Close отписывает всех подписчиков. Реестр после этого не принимает подписки и публикации.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	var all []*Subscription
	for _, t := range r.topics {
		for id, sub := range t.subs {
			all = append(all, sub)
			delete(t.subs, id)
		}
	}
	r.mu.Unlock()

	for _, sub := range all {
		sub.close()
	}
}
