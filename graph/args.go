package graph

import (
	gqlgen "github.com/99designs/gqlgen/graphql"
)

// Разбор аргументов graphql-go. Отсутствующий аргумент и явный null
// отсутствуют в карте и дают nil-указатель ("не менять").

type args map[string]interface{}

func (a args) str(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a args) strPtr(name string) *string {
	s, ok := a[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func (a args) intPtr(name string) *int {
	n, ok := a[name].(int)
	if !ok {
		return nil
	}
	return &n
}

func (a args) int(name string) int {
	n, _ := a[name].(int)
	return n
}

// strs - список строк; элементы null пропускаются.
func (a args) strs(name string) []string {
	raw, ok := a[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (a args) strsPtr(name string) *[]string {
	if _, ok := a[name].([]interface{}); !ok {
		return nil
	}
	out := a.strs(name)
	return &out
}

func (a args) upload(name string) *gqlgen.Upload {
	u, _ := a[name].(*gqlgen.Upload)
	return u
}

// enumArg - значение enum-аргумента (graphql-go уже перевёл имя в доменный тип).
func enumArg[T ~string](a args, name string) T {
	v, _ := a[name].(T)
	return v
}

func enumPtr[T ~string](a args, name string) *T {
	v, ok := a[name].(T)
	if !ok {
		return nil
	}
	return &v
}

func enumList[T ~string](a args, name string) []T {
	raw, ok := a[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]T, 0, len(raw))
	for _, it := range raw {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func enumListPtr[T ~string](a args, name string) *[]T {
	if _, ok := a[name].([]interface{}); !ok {
		return nil
	}
	out := enumList[T](a, name)
	return &out
}
