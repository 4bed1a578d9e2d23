package pubsub

// Scoped - представление производной темы, перечитанное только для одного ключа.
// Подписчики с другим ключом такую публикацию не получают.
type Scoped struct {
	Key  string
	View any
}

// Unscope снимает обёртку Scoped, если она есть.
func Unscope(view any) any {
	if s, ok := view.(Scoped); ok {
		return s.View
	}
	return view
}

// KeyedTopic - производная тема: полное представление ([]*T) фильтруется
// для каждого подписчика по ключу, переданному при подписке.
type KeyedTopic[T any] struct {
	Name string
	key  func(*T) string
}

// Keyed объявляет производную тему с функцией извлечения ключа.
func Keyed[T any](name string, key func(*T) string) KeyedTopic[T] {
	return KeyedTopic[T]{Name: name, key: key}
}

// Key возвращает ключ элемента.
func (k KeyedTopic[T]) Key(it *T) string { return k.key(it) }

// For возвращает фильтр подписчика с ключом key.
func (k KeyedTopic[T]) For(key string) Filter {
	return k.Where(key, nil)
}

// Where - фильтр подписчика с ключом key и дополнительным предикатом.
func (k KeyedTopic[T]) Where(key string, pred func(*T) bool) Filter {
	match := Match(func(it *T) bool {
		return k.key(it) == key && (pred == nil || pred(it))
	})
	return func(view any) (any, bool) {
		if s, ok := view.(Scoped); ok && s.Key != key {
			return nil, false
		}
		return match(view)
	}
}

// Match строит фильтр по произвольному предикату над элементами []*T.
// Представление другого типа подписчику не отправляется.
func Match[T any](pred func(*T) bool) Filter {
	return func(view any) (any, bool) {
		items, ok := Unscope(view).([]*T)
		if !ok {
			return nil, false
		}
		out := make([]*T, 0, len(items))
		for _, it := range items {
			if pred(it) {
				out = append(out, it)
			}
		}
		return out, true
	}
}
