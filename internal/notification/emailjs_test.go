package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeline-connect/lifeline_connect/internal/logging"
)

func newTestMailer(t *testing.T, handler http.HandlerFunc) (*EmailJSMailer, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	mailer := NewEmailJSMailer(EmailJSConfig{
		BaseURL:    srv.URL,
		ServiceID:  "service_1",
		TemplateID: "template_1",
		PublicKey:  "public",
	}, logging.Discard())
	return mailer, srv
}

func TestSendOTPEmailPopulatesAliases(t *testing.T) {
	var got emailJSRequest
	mailer, _ := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, emailJSSendPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	})

	ok := mailer.SendOTPEmail(context.Background(), "x@example.com", "", "482913")
	require.True(t, ok)

	assert.Equal(t, "service_1", got.ServiceID)
	assert.Equal(t, "template_1", got.TemplateID)
	assert.Equal(t, "public", got.UserID)
	assert.Equal(t, "User", got.TemplateParams["to_name"])
	assert.Equal(t, "482913", got.TemplateParams["otp"])
	for _, key := range []string{"to_email", "user_email", "email", "recipient"} {
		assert.Equal(t, "x@example.com", got.TemplateParams[key], key)
	}
}

func TestSendOTPEmailReportsFailure(t *testing.T) {
	mailer, _ := newTestMailer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "The template ID is invalid", http.StatusBadRequest)
	})

	err := mailer.Send(context.Background(), "x@example.com", "Devi", "482913")
	require.True(t, errors.Is(err, ErrDeliveryFailed))
	assert.False(t, mailer.SendOTPEmail(context.Background(), "x@example.com", "Devi", "482913"))
}

func TestLoggerNotifierNeverDelivers(t *testing.T) {
	n := NewLoggerNotifier(logging.Discard())
	assert.False(t, n.SendOTPEmail(context.Background(), "x@example.com", "Devi", "482913"))
	assert.NoError(t, n.Send(context.Background(), Message{Kind: KindRequestPosted, Destination: "feed"}))
}
