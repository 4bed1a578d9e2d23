package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Request - операция GraphQL в теле запроса, в параметрах GET или в сообщении websocket.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// Operation определяет тип операции (query, mutation, subscription),
// которую выполнит запрос.
func (req *Request) Operation() (ast.Operation, error) {
	if strings.TrimSpace(req.Query) == "" {
		return "", badRequest("query is empty")
	}
	doc, err := parser.ParseQuery(&ast.Source{Name: "request", Input: req.Query})
	if err != nil {
		return "", badRequest("%v", err)
	}
	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		if req.OperationName == "" {
			return "", badRequest("operation name is required")
		}
		return "", badRequest("unknown operation %q", req.OperationName)
	}
	return op.Operation, nil
}

// fromQuery читает операцию из параметров GET-запроса.
func fromQuery(r *http.Request) (*Request, error) {
	q := r.URL.Query()
	req := &Request{
		Query:         q.Get("query"),
		OperationName: q.Get("operationName"),
	}
	if raw := q.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			return nil, badRequest("variables: %v", err)
		}
	}
	return req, nil
}

// fromJSON читает операцию из тела application/json.
func fromJSON(body io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, badRequest("body: %v", err)
	}
	return &req, nil
}

// uploads - открытые файлы multipart-запроса. Закрываются после выполнения операции.
type uploads []multipart.File

func (u uploads) Close() {
	for _, f := range u {
		f.Close()
	}
}

// fromMultipart разбирает запрос по GraphQL multipart request:
// поле operations с операцией, поле map с путями файлов, затем сами файлы.
func fromMultipart(r *http.Request, maxMemory int64) (*Request, uploads, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, badRequest("request is larger than %d bytes", tooLarge.Limit)
		}
		return nil, nil, badRequest("multipart: %v", err)
	}
	form := r.MultipartForm

	ops := form.Value["operations"]
	if len(ops) == 0 {
		return nil, nil, badRequest("operations field is missing")
	}
	req, err := fromJSON(strings.NewReader(ops[0]))
	if err != nil {
		return nil, nil, err
	}

	var paths map[string][]string
	if raw := form.Value["map"]; len(raw) > 0 {
		if err := json.Unmarshal([]byte(raw[0]), &paths); err != nil {
			return nil, nil, badRequest("map: %v", err)
		}
	}

	var files uploads
	for key, targets := range paths {
		headers := form.File[key]
		if len(headers) == 0 {
			files.Close()
			return nil, nil, badRequest("file %q is missing", key)
		}
		for _, target := range targets {
			hdr := headers[0]
			f, err := hdr.Open()
			if err != nil {
				files.Close()
				return nil, nil, badRequest("file %q: %v", key, err)
			}
			files = append(files, f)
			up := &gqlgen.Upload{
				File:        f,
				Filename:    hdr.Filename,
				Size:        hdr.Size,
				ContentType: hdr.Header.Get("Content-Type"),
			}
			if err := req.place(target, up); err != nil {
				files.Close()
				return nil, nil, err
			}
		}
	}
	return req, files, nil
}

// place кладёт загрузку по пути вида "variables.input.files.0".
func (req *Request) place(path string, up *gqlgen.Upload) error {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[0] != "variables" {
		return badRequest("invalid map path %q", path)
	}
	if req.Variables == nil {
		req.Variables = map[string]interface{}{}
	}

	var cur interface{} = req.Variables
	for i, key := range parts[1:] {
		last := i == len(parts)-2
		switch node := cur.(type) {
		case map[string]interface{}:
			if last {
				node[key] = up
				return nil
			}
			cur = node[key]
		case []interface{}:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return badRequest("invalid map path %q", path)
			}
			if last {
				node[idx] = up
				return nil
			}
			cur = node[idx]
		default:
			return badRequest("invalid map path %q", path)
		}
	}
	return nil
}

// isMultipart сообщает, что тело запроса - multipart/form-data.
func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}
