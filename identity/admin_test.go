package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testUserID = "2f1c8b4e-6a0d-4c1e-9b7a-3d5e8f9a0b1c"

func newTestAdmin(t *testing.T, handler http.HandlerFunc, missingOK bool) *AdminClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewAdminClient(AdminConfig{
		SupabaseURL:           server.URL,
		ServiceRoleKey:        "service-key",
		TreatMissingAsDeleted: missingOK,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewAdminClient_RequiresCredentials(t *testing.T) {
	_, err := NewAdminClient(AdminConfig{SupabaseURL: testURL}, nil)
	assert.Error(t, err)

	_, err = NewAdminClient(AdminConfig{ServiceRoleKey: "k"}, nil)
	assert.Error(t, err)
}

func TestDeleteUser_Success(t *testing.T) {
	var gotMethod, gotPath, gotKey, gotAuth string
	c := newTestAdmin(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}, false)

	err := c.DeleteUser(context.Background(), testUserID)
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/auth/v1/admin/users/"+testUserID, gotPath)
	assert.Equal(t, "service-key", gotKey)
	assert.Equal(t, "Bearer service-key", gotAuth)
}

func TestDeleteUser_APIError(t *testing.T) {
	c := newTestAdmin(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"Invalid API key"}`))
	}, false)

	err := c.DeleteUser(context.Background(), testUserID)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Invalid API key")
}

func TestDeleteUser_NotFound(t *testing.T) {
	notFound := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"User not found"}`))
	}

	strict := newTestAdmin(t, notFound, false)
	assert.ErrorIs(t, strict.DeleteUser(context.Background(), testUserID), ErrUserNotFound)

	lenient := newTestAdmin(t, notFound, true)
	assert.NoError(t, lenient.DeleteUser(context.Background(), testUserID))
}

func TestDeleteUser_RejectsWithoutRequest(t *testing.T) {
	c := newTestAdmin(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}, false)

	assert.Error(t, c.DeleteUser(context.Background(), ""))
	assert.ErrorContains(t, c.DeleteUser(context.Background(), "not-a-uuid"), "invalid identity user id")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.DeleteUser(ctx, testUserID), context.Canceled)
}

func TestAsAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "with body", err: errors.New("response status code 502: upstream down"), wantStatus: 502, wantMsg: "upstream down"},
		{name: "without body", err: errors.New("response status code 500"), wantStatus: 500, wantMsg: "no response body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := asAPIError(tt.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}

	assert.Nil(t, asAPIError(errors.New("dial tcp: connection refused")))
}
