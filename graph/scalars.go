package graph

import (
	"time"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// Upload - файл из multipart-запроса. Транспорт подставляет *gqlgen.Upload
// в переменные операции, литералом загрузку передать нельзя.
var Upload = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Upload",
	Description: "A file sent as part of a multipart request.",
	Serialize: func(value interface{}) interface{} {
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		switch u := value.(type) {
		case *gqlgen.Upload:
			return u
		case gqlgen.Upload:
			return &u
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return nil
	},
})

// timestamp форматирует метку времени для полей createdAt и updatedAt.
// Нулевое время - null.
func timestamp(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
