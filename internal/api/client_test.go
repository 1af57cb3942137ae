package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/motinbox/internal/api"
	"github.com/cristianoliveira/motinbox/internal/api/apitest"
	"github.com/cristianoliveira/motinbox/internal/domain"
)

func seed(n int) []domain.Notification {
	out := make([]domain.Notification, n)
	for i := range out {
		out[i] = domain.Notification{
			ID:    uuid.NewString(),
			Event: domain.EventDescriptor{Type: "booking_confirmed", Text: "Booking confirmed"},
		}
	}
	return out
}

func TestListNotificationsPaginates(t *testing.T) {
	backend := apitest.NewBackend(t)
	records := seed(5)
	backend.Seed(domain.RoleDriver, records...)
	client := api.New(backend.URL(), api.WithToken("secret"), api.WithUserID("u1"))

	resp, err := client.ListNotifications(context.Background(), domain.RoleDriver, 1, 2)
	require.NoError(t, err)
	require.True(t, resp.Valid())
	require.Len(t, resp.Records(), 2)
	assert.Equal(t, records[0].ID, resp.Records()[0].ID)
	assert.Equal(t, "Booking confirmed", resp.Records()[0].Text())
	assert.True(t, resp.HasMore())

	resp, err = client.ListNotifications(context.Background(), domain.RoleDriver, 3, 2)
	require.NoError(t, err)
	require.Len(t, resp.Records(), 1)
	assert.False(t, resp.HasMore())

	reqs := backend.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/driver/notifications", reqs[0].Path)
	assert.Equal(t, "limit=2&page=1", reqs[0].Query)
	assert.Equal(t, "Bearer secret", reqs[0].Auth)
	assert.Equal(t, "u1", reqs[0].UserID)
	_, err = uuid.Parse(reqs[0].RequestID)
	assert.NoError(t, err, "request id is a uuid")
	assert.NotEqual(t, reqs[0].RequestID, reqs[1].RequestID)
}

func TestEmptyListIsValid(t *testing.T) {
	backend := apitest.NewBackend(t)
	client := api.New(backend.URL())

	resp, err := client.ListNotifications(context.Background(), domain.RoleGarage, 1, 10)
	require.NoError(t, err)
	assert.True(t, resp.Valid())
	assert.Empty(t, resp.Records())
	assert.False(t, resp.HasMore())
}

func TestUnreadAndMutations(t *testing.T) {
	backend := apitest.NewBackend(t)
	records := seed(3)
	backend.Seed(domain.RoleGarage, records...)
	client := api.New(backend.URL())
	ctx := context.Background()

	count, err := client.UnreadCount(ctx, domain.RoleGarage)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, client.MarkRead(ctx, domain.RoleGarage, records[0].ID))
	count, err = client.UnreadCount(ctx, domain.RoleGarage)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, client.Delete(ctx, domain.RoleGarage, records[1].ID))
	assert.Len(t, backend.Records(domain.RoleGarage), 2)

	require.NoError(t, client.MarkAllRead(ctx, domain.RoleGarage))
	count, err = client.UnreadCount(ctx, domain.RoleGarage)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, client.DeleteAll(ctx, domain.RoleGarage))
	assert.Empty(t, backend.Records(domain.RoleGarage))

	var paths []string
	for _, r := range backend.Requests() {
		paths = append(paths, r.Method+" "+r.Path)
	}
	assert.Contains(t, paths, "PUT /garage/notifications/"+records[0].ID+"/read")
	assert.Contains(t, paths, "DELETE /garage/notifications/"+records[1].ID)
	assert.Contains(t, paths, "PUT /garage/notifications/read-all")
	assert.Contains(t, paths, "DELETE /garage/notifications")
}

func TestHTTPErrors(t *testing.T) {
	backend := apitest.NewBackend(t)
	client := api.New(backend.URL())
	ctx := context.Background()

	backend.FailNext(1, http.StatusInternalServerError)
	err := client.DeleteAll(ctx, domain.RoleAdmin)
	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Contains(t, httpErr.Body, "injected failure")
	assert.False(t, errors.Is(err, api.ErrUnauthorized))

	err = client.Delete(ctx, domain.RoleAdmin, "missing")
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	backend.RequireToken("good")
	_, err = api.New(backend.URL(), api.WithToken("bad")).UnreadCount(ctx, domain.RoleAdmin)
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestInvalidIDIsRejectedLocally(t *testing.T) {
	backend := apitest.NewBackend(t)
	client := api.New(backend.URL())

	require.ErrorIs(t, client.MarkRead(context.Background(), domain.RoleDriver, " "), domain.ErrInvalidNotificationID)
	require.ErrorIs(t, client.Delete(context.Background(), domain.RoleDriver, ""), domain.ErrInvalidNotificationID)
	assert.Empty(t, backend.Requests())
}

func TestContextCancellation(t *testing.T) {
	backend := apitest.NewBackend(t)
	client := api.New(backend.URL(), api.WithTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.UnreadCount(ctx, domain.RoleDriver)
	require.ErrorIs(t, err, context.Canceled)
}
