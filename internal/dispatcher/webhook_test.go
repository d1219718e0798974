package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestWebhookPostsRenderedPayload(t *testing.T) {
	var got webhookBody
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewWebhook(time.Second)
	err := d.Send(context.Background(), Payload{
		Address: "ops-hook",
		Subject: "subj",
		Text:    "body",
		Config: datatypes.JSONMap{
			"url":     srv.URL,
			"headers": map[string]any{"X-Token": "secret"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "ops-hook", got.Address)
	require.Equal(t, "subj", got.Subject)
	require.Equal(t, "body", got.Text)
	require.Equal(t, "secret", header)
}

func TestWebhookUsesAddressAsURL(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewWebhook(time.Second)
	err := d.Send(context.Background(), Payload{Address: srv.URL, Text: "body", Config: datatypes.JSONMap{}})
	require.NoError(t, err)
	require.True(t, hit)
}

func TestWebhookNon2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewWebhook(time.Second)
	err := d.Send(context.Background(), Payload{Address: srv.URL, Config: datatypes.JSONMap{}})
	require.Error(t, err)
}

func TestWebhookMissingAddress(t *testing.T) {
	d := NewWebhook(time.Second)
	err := d.Send(context.Background(), Payload{Config: datatypes.JSONMap{}})
	require.ErrorIs(t, err, ErrMissingAddress)
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry(NewNull())

	d, err := registry.Get("null")
	require.NoError(t, err)
	require.Equal(t, "null", d.Name())

	_, err = registry.Get("missing")
	require.ErrorIs(t, err, ErrUnknownDispatcher)

	require.True(t, registry.Has(DefaultName))
	require.Equal(t, []string{"null"}, registry.Names())
}
