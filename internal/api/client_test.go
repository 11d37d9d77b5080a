package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointment-booking-client/internal/models"
)

type fakeAuthorizer struct {
	mu        sync.Mutex
	token     string
	teardowns int
}

func (f *fakeAuthorizer) Authorize(req *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
}

func (f *fakeAuthorizer) Teardown(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.teardowns++
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *fakeAuthorizer) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Options{BaseURL: srv.URL + "/api/"})
	auth := &fakeAuthorizer{token: "tok"}
	c.UseAuthorizer(auth)
	return c, auth
}

func TestBookSendsBearerAndBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/appointments/book", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(headerRequestID))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"slotId":42}`, string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"slotId":42,"status":"PENDING","slotDate":"2024-06-10","startTime":"14:30:00"}`))
	})

	appt, err := c.Book(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), appt.SlotID)
	assert.Equal(t, models.StatusPending, appt.Status)
}

func TestSlotQueries(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("doctorId"))
		assert.Equal(t, "2024-06-10", r.URL.Query().Get("date"))
		switch r.URL.Path {
		case "/api/slots/by-date":
			_, _ = w.Write([]byte(`[{"id":1,"available":true},{"id":2,"available":false}]`))
		case "/api/slots/available":
			_, _ = w.Write([]byte(`[{"id":1,"available":true}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	all, err := c.SlotsByDate(context.Background(), 7, "2024-06-10")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	free, err := c.AvailableSlots(context.Background(), 7, "2024-06-10")
	require.NoError(t, err)
	assert.Len(t, free, 1)
}

func TestUnauthorizedTearsDownSession(t *testing.T) {
	c, auth := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid or expired token"}`))
	})

	_, err := c.MyAppointments(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthentication))
	assert.Equal(t, 1, auth.teardowns)
	assert.Empty(t, auth.token)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    Kind
		message string
	}{
		{http.StatusBadRequest, `{"error":"This slot is no longer available"}`, KindValidation, "This slot is no longer available"},
		{http.StatusUnprocessableEntity, `{"message":"bad input"}`, KindValidation, "bad input"},
		{http.StatusForbidden, `{"error":"Access denied"}`, KindNotFoundOrConflict, "Access denied"},
		{http.StatusNotFound, ``, KindNotFoundOrConflict, ""},
		{http.StatusConflict, `{"error":"taken"}`, KindNotFoundOrConflict, "taken"},
		{http.StatusInternalServerError, `<html>oops</html>`, KindNetwork, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, auth := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.Cancel(context.Background(), 3)
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Zero(t, auth.teardowns)
		})
	}
}

func TestTransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url})
	_, err := c.Services(context.Background())
	assert.True(t, IsKind(err, KindNetwork))
	assert.Equal(t, "Failed to load services", Message(err, "Failed to load services"))
}

func TestUpdateStatusBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/admin/appointments/9/status", r.URL.Path)
		var req models.StatusRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.StatusApproved, req.Status)
		_, _ = w.Write([]byte(`{"id":9,"status":"APPROVED"}`))
	})

	appt, err := c.UpdateStatus(context.Background(), 9, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, appt.Status)
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "Booking failed", Message(errors.New("boom"), "Booking failed"))
	assert.Equal(t, "server says no", Message(&Error{Kind: KindValidation, Message: "server says no"}, "Booking failed"))
}
