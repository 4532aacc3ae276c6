package Whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "919876543210", NormalizePhone("98765 43210"))
	assert.Equal(t, "919876543210", NormalizePhone("+91-98765-43210"))
	assert.Equal(t, "919876543210", NormalizePhone("09876543210"))
	assert.Equal(t, "", NormalizePhone("n/a"))
}

func TestClientSend(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send/message", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"code":"SUCCESS","message":"Success","results":{"message_id":"x"}}`))
	}))
	defer server.Close()

	message := "Namaste Ravi, your balance is \"12000.00\"\nThanks"
	err := NewClient(server.URL+"/").Send(context.Background(), "9876543210", message)
	require.NoError(t, err)
	assert.Equal(t, "919876543210", got["phone"])
	assert.Equal(t, message, got["message"], "quotes and newlines survive encoding")
}

func TestClientSend_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"ERROR","message":"not logged in"}`))
	}))
	defer server.Close()

	err := NewClient(server.URL).Send(context.Background(), "9876543210", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	assert.Error(t, NewClient(server.URL).Send(context.Background(), "", "hi"))
}

func TestClientDevices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/app/devices", r.URL.Path)
		w.Write([]byte(`{"code":"SUCCESS","results":[{"name":"Shop","device":"91999@s.whatsapp.net"}]}`))
	}))
	defer server.Close()

	devices, err := NewClient(server.URL).Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "Shop", devices[0].Name)
}
