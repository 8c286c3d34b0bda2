package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

func TestReadClientEnv_Defaults(t *testing.T) {
	t.Setenv("DPN_ADDRESS", "  ")
	t.Setenv("DPN_TLS_KEY", "")
	t.Setenv("DPN_TLS_CERT", "")
	t.Setenv("DPN_CA_TLS_CERT", "")

	env := readClientEnv()
	assert.Equal(t, defaultAddress, env.Address)
	assert.Equal(t, 0, env.tlsSet())
}

func TestDial_IncompleteTLS(t *testing.T) {
	_, err := dial(clientEnv{Address: defaultAddress, KeyPEM: "key"}, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DPN_TLS_KEY")
}

func TestDial_BadKeyPair(t *testing.T) {
	_, err := dial(clientEnv{Address: defaultAddress, KeyPEM: "key", CertPEM: "cert", CAPEM: "ca"}, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cert/key")
}

func TestDial_PlainHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiv1.PathStatus, r.URL.Path)
		_ = json.NewEncoder(w).Encode(apiv1.StatusResponse{Running: true, Command: "yarn start"})
	}))
	defer srv.Close()

	t.Setenv("DPN_ADDRESS", strings.TrimPrefix(srv.URL, "http://"))
	client, err := dial(readClientEnv(), time.Second)
	require.NoError(t, err)

	st, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Running)
	assert.Equal(t, "yarn start", st.Command)
}

func TestForbidden(t *testing.T) {
	assert.NoError(t, forbidden(&apiv1.StatusError{Code: http.StatusForbidden}, "nope"))

	other := &apiv1.StatusError{Code: http.StatusInternalServerError}
	assert.Equal(t, error(other), forbidden(other, "nope"))
}
