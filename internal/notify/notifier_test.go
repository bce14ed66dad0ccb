package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/campaign-manager-backend/internal/notify"
)

func TestRegistryLookup(t *testing.T) {
	r := notify.NewRegistry()
	mock := notify.NewMockNotifier()
	r.Register("mock", mock)

	got, err := r.Get("mock")
	require.NoError(t, err)
	assert.Equal(t, mock, got)

	_, err = r.Get("sms")
	assert.Error(t, err)
}

func TestMockNotifierFailures(t *testing.T) {
	mock := notify.NewMockNotifier("bad@x.com")

	require.NoError(t, mock.Send(context.Background(), "t", "m", "good@x.com"))
	assert.Error(t, mock.Send(context.Background(), "t", "m", "bad@x.com"))
	assert.Equal(t, []string{"good@x.com"}, mock.Sent())
}

func TestBuildRegistryDefaults(t *testing.T) {
	r := notify.BuildRegistry("", "noreply@example.com")

	email, err := r.Get("email")
	require.NoError(t, err)
	// Without an API key the email channel is the mock.
	_, ok := email.(*notify.MockNotifier)
	assert.True(t, ok)

	_, err = r.Get("mock")
	assert.NoError(t, err)
}
