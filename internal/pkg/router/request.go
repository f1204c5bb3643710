package router

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/julienschmidt/httprouter"
)

// maxBodyBytes bounds JSON request bodies; every API payload is a few fields.
const maxBodyBytes = 64 * 1024

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request
}

// GetParam reads a path parameter from the request context (as stored by httprouter).
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetParamInt64 reads a numeric path parameter such as a credential id.
func (r *Request) GetParamInt64(key string) (int64, error) {
	value, err := strconv.ParseInt(r.GetParam(key), 10, 64)
	if err != nil || value <= 0 {
		return 0, goerror.NewInvalidFormat("Invalid " + key)
	}
	return value, nil
}

func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// GetQueryInt32 returns 0 when the query is absent.
func (r *Request) GetQueryInt32(key string) (int32, error) {
	queryValue := r.GetQuery(key)
	if queryValue == "" {
		return 0, nil
	}

	value, err := strconv.ParseInt(queryValue, 10, 32)
	if err != nil {
		return 0, goerror.NewInvalidFormat("Invalid query " + key)
	}

	return int32(value), nil
}

// DecodeBody decodes a single JSON object into dst, rejecting unknown fields
// and trailing data. dst must be a non-nil pointer and is only written when
// the whole body is valid.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	staged := reflect.New(target.Elem().Type())
	staged.Elem().Set(target.Elem())
	if err := dec.Decode(staged.Interface()); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	target.Elem().Set(staged.Elem())
	return nil
}

// DecodeOptionalBody behaves like DecodeBody but leaves dst untouched when the
// request carries no body at all.
func (r *Request) DecodeOptionalBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}

	br := bufio.NewReader(r.Body)
	if _, err := br.Peek(1); errors.Is(err, io.EOF) {
		return nil
	}
	r.Body = io.NopCloser(br)

	return r.DecodeBody(dst)
}
