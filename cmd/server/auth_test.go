package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connState(uris ...string) *tls.ConnectionState {
	cert := &x509.Certificate{}
	for _, u := range uris {
		parsed, err := url.Parse(u)
		if err != nil {
			panic(err)
		}
		cert.URIs = append(cert.URIs, parsed)
	}
	return &tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}
}

func TestContext_HasSpiffeId(t *testing.T) {
	ctx := injectSpiffeId(context.Background(), "TEST")

	actual := extractSpiffeIdFromTls(ctx, nil)
	require.NotNil(t, actual)
	assert.Equal(t, "TEST", *actual)
}

func TestTls_SpiffeIdFromCertificate(t *testing.T) {
	state := connState("https://example.com", "spiffe://client1/workload")

	actual := extractSpiffeIdFromTls(context.Background(), state)
	require.NotNil(t, actual)
	assert.Equal(t, "client1", *actual)
}

func TestTls_NoSpiffeId(t *testing.T) {
	assert.Nil(t, extractSpiffeIdFromTls(context.Background(), nil))
	assert.Nil(t, extractSpiffeIdFromTls(context.Background(), &tls.ConnectionState{}))
	assert.Nil(t, extractSpiffeIdFromTls(context.Background(), connState("https://example.com")))
}

func TestContext_WinsOverCertificate(t *testing.T) {
	ctx := injectSpiffeId(context.Background(), "injected")

	actual := extractSpiffeIdFromTls(ctx, connState("spiffe://client1"))
	require.NotNil(t, actual)
	assert.Equal(t, "injected", *actual)
}
