// Package httpcodec holds the JSON encoding and error to status mapping
// shared by every HTTP transport.
package httpcodec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"

	"github.com/ichigozero/taskguard/kind"
)

// ErrBadRouting is returned when a route is missing an expected path
// variable. It indicates a programming error.
var ErrBadRouting = errors.New("inconsistent mapping between route and handler")

// ErrInvalidPath is returned for a malformed path variable such as a
// non-numeric id.
var ErrInvalidPath = kind.New("invalid path parameter", kind.ErrBadRequest)

const internalError = "internal server error"

// StatusCode maps an error to its HTTP status by kind.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, kind.ErrForbidden), errors.Is(err, kind.ErrInvalidInput):
		return http.StatusForbidden
	case errors.Is(err, kind.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, kind.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, kind.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, kind.ErrBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorEncoder writes err as {"error": "..."}. Errors without a kind are
// reported with a generic message.
func ErrorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	code := StatusCode(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = internalError
	}
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorWrapper{Error: msg})
}

type ErrorWrapper struct {
	Error string `json:"error"`
}

// EncodeResponse is a transport/http.EncodeResponseFunc that encodes the
// response as JSON, or the failure of an endpoint.Failer through
// ErrorEncoder. Responses implementing httptransport.StatusCoder choose
// their own status.
func EncodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		ErrorEncoder(ctx, f.Failed(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if sc, ok := response.(httptransport.StatusCoder); ok {
		w.WriteHeader(sc.StatusCode())
	}
	return json.NewEncoder(w).Encode(response)
}

// EncodeRequest is a transport/http.EncodeRequestFunc that JSON-encodes any
// request to the request body. Primarily useful in a client.
func EncodeRequest(_ context.Context, r *http.Request, request interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return err
	}
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.Body = ioutil.NopCloser(&buf)
	return nil
}

// DecodeJSON decodes a request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return kind.New("malformed request body: "+err.Error(), kind.ErrBadRequest)
	}
	return nil
}

// ID reads the numeric path variable name.
func ID(r *http.Request, name string) (uint64, error) {
	s, err := Var(r, name)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidPath
	}
	return id, nil
}

// Var reads the path variable name.
func Var(r *http.Request, name string) (string, error) {
	v, ok := mux.Vars(r)[name]
	if !ok {
		return "", ErrBadRouting
	}
	return v, nil
}

// RemoteError is a failure reported by a remote service.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Unwrap exposes the kind matching Code, so a status read back from the
// wire is classified the same way on both ends.
func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case http.StatusForbidden:
		return kind.ErrForbidden
	case http.StatusConflict:
		return kind.ErrConflict
	case http.StatusNotFound:
		return kind.ErrNotFound
	case http.StatusUnauthorized:
		return kind.ErrUnauthorized
	case http.StatusBadRequest:
		return kind.ErrBadRequest
	}
	return nil
}

// DecodeError reads an error body written by ErrorEncoder.
func DecodeError(r *http.Response) error {
	var w ErrorWrapper
	if err := json.NewDecoder(r.Body).Decode(&w); err != nil || w.Error == "" {
		return &RemoteError{Code: r.StatusCode, Message: r.Status}
	}
	return &RemoteError{Code: r.StatusCode, Message: w.Error}
}

// CheckResponse sorts a client response. A status other than want yields
// failed, which belongs in the response's Err; a 5xx status yields err.
func CheckResponse(r *http.Response, want int) (failed, err error) {
	switch {
	case r.StatusCode >= http.StatusInternalServerError:
		return nil, DecodeError(r)
	case r.StatusCode != want:
		return DecodeError(r), nil
	}
	return nil, nil
}
