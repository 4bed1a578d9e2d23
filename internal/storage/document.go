package storage

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Document - сущность в нормализованном json-виде. Используется драйверами,
// которые хранят документы сами (in-memory, postgres jsonb).
type Document map[string]any

// ToDocument переводит сущность в Document через её json-представление.
func ToDocument(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Normalize приводит значение к виду, в котором оно лежит в Document
// (именованные строковые типы -> string, числа -> float64, time.Time -> RFC3339 и т.д.).
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Apply накладывает патч на документ.
func (d Document) Apply(p Patch) error {
	for k, v := range p {
		nv, err := Normalize(v)
		if err != nil {
			return fmt.Errorf("patch field %q: %w", k, err)
		}
		d[k] = nv
	}
	return nil
}

// Matches проверяет документ на соответствие фильтру.
func (d Document) Matches(f Filter) (bool, error) {
	for field, want := range f {
		got, ok := d[field]
		if set, isSet := want.(In); isSet {
			s, _ := got.(string)
			if !ok || !contains(set, s) {
				return false, nil
			}
			continue
		}
		nw, err := Normalize(want)
		if err != nil {
			return false, fmt.Errorf("filter field %q: %w", field, err)
		}
		if !matchValue(got, nw) {
			return false, nil
		}
	}
	return true, nil
}

func matchValue(got, want any) bool {
	if reflect.DeepEqual(got, want) {
		return true
	}
	// как в mongo: скаляр совпадает с массивом, если массив его содержит
	if arr, ok := got.([]any); ok {
		if _, wantArr := want.([]any); !wantArr {
			for _, it := range arr {
				if reflect.DeepEqual(it, want) {
					return true
				}
			}
		}
	}
	return false
}

func contains(set In, s string) bool {
	for _, it := range set {
		if it == s {
			return true
		}
	}
	return false
}

// Decode раскладывает документ(ы) в out через json: out - указатель на сущность или на срез.
func Decode(docs any, out any) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
