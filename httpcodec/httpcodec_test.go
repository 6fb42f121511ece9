package httpcodec_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/httpcodec"
	"github.com/ichigozero/taskguard/kind"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{usersvc.ErrNotOwner, http.StatusForbidden},
		{tasksvc.ErrNotOwner, http.StatusForbidden},
		{usersvc.ErrInvalidName, http.StatusForbidden},
		{usersvc.ErrNameInUse, http.StatusForbidden},
		{tasksvc.ErrTitleInUse, http.StatusForbidden},
		{tasksvc.ErrOwnerTaken, http.StatusForbidden},
		{kind.ErrConflict, http.StatusConflict},
		{usersvc.ErrUserNotFound, http.StatusNotFound},
		{tasksvc.ErrTaskNotFound, http.StatusNotFound},
		{authsvc.ErrUnauthorized, http.StatusUnauthorized},
		{authsvc.ErrTokenExpired, http.StatusUnauthorized},
		{authsvc.ErrInvalidCredentials, http.StatusUnauthorized},
		{authsvc.ErrMalformedToken, http.StatusBadRequest},
		{httpcodec.ErrInvalidPath, http.StatusBadRequest},
		{fmt.Errorf("find task: %w", tasksvc.ErrTaskNotFound), http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
		{httpcodec.ErrBadRouting, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, httpcodec.StatusCode(tt.err), tt.err.Error())
	}
}

func TestErrorEncoder(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantBody string
		wantAuth string
	}{
		{tasksvc.ErrInvalidTitle, http.StatusForbidden, "invalid task title", ""},
		{authsvc.ErrTokenExpired, http.StatusUnauthorized, "token expired", "Bearer"},
		{errors.New("pq: password authentication failed"), http.StatusInternalServerError, "internal server error", ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		httpcodec.ErrorEncoder(context.Background(), tt.err, w)

		assert.Equal(t, tt.wantCode, w.Code)
		assert.Equal(t, tt.wantAuth, w.Header().Get("WWW-Authenticate"))

		var body httpcodec.ErrorWrapper
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, tt.wantBody, body.Error)
	}
}

type created struct {
	Name string `json:"name"`
}

func (created) StatusCode() int { return http.StatusCreated }

type failed struct{ err error }

func (f failed) Failed() error { return f.err }

func TestEncodeResponse(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, httpcodec.EncodeResponse(context.Background(), w, created{"x"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"x"}`, w.Body.String())

	w = httptest.NewRecorder()
	require.NoError(t, httpcodec.EncodeResponse(context.Background(), w, failed{usersvc.ErrUserNotFound}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, w.Body.String())
}

func TestPathVars(t *testing.T) {
	var (
		gotID  uint64
		gotErr error
	)
	r := mux.NewRouter()
	r.HandleFunc("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotID, gotErr = httpcodec.ID(r, "id")
	})
	r.HandleFunc("/other", func(w http.ResponseWriter, r *http.Request) {
		_, gotErr = httpcodec.Var(r, "id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/tasks/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, uint64(42), gotID)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/tasks/abc", nil))
	assert.ErrorIs(t, gotErr, httpcodec.ErrInvalidPath)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/other", nil))
	assert.ErrorIs(t, gotErr, httpcodec.ErrBadRouting)
}

func TestDecodeError(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusForbidden,
		Status:     "403 Forbidden",
		Body:       http.NoBody,
	}
	err := httpcodec.DecodeError(resp)
	assert.EqualError(t, err, "403 Forbidden")
	assert.ErrorIs(t, err, kind.ErrForbidden)

	resp = &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       ioutil.NopCloser(strings.NewReader(`{"error":"task not found"}`)),
	}
	err = httpcodec.DecodeError(resp)
	assert.EqualError(t, err, "task not found")
	assert.ErrorIs(t, err, kind.ErrNotFound)
}
