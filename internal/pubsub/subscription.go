package pubsub

import "sync"

// Subscription - подписчик темы. Канал C закрывается после отписки.
type Subscription struct {
	id     uint64
	topic  string
	filter Filter

	mu     sync.Mutex
	ch     chan any
	closed bool
}

// C возвращает канал, в который доставляются представления.
func (s *Subscription) C() <-chan any { return s.ch }

// Topic возвращает имя темы подписки.
func (s *Subscription) Topic() string { return s.topic }

// deliver отправляет значение, не блокируясь. Если буфер полон, самое старое
// значение выбрасывается: медленный потребитель видит последнее состояние.
func (s *Subscription) deliver(v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	for {
		select {
		case s.ch <- v:
			return true
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
