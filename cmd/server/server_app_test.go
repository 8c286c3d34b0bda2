package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
	"github.com/SanjoDeundiak/devpanel/internal/config"
)

type testCA struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
	pem  []byte
}

func newTestCA(t *testing.T, name string) *testCA {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: name},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &testCA{cert: cert, key: key, pem: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})}
}

// issue signs a leaf certificate and returns its PEM encoded cert and key.
func (ca *testCA) issue(t *testing.T, serial int64, spiffe string, usage x509.ExtKeyUsage) (certPEM, keyPEM []byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: "devpanel test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{usage},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1)},
	}
	if spiffe != "" {
		u, err := url.Parse(spiffe)
		require.NoError(t, err)
		tmpl.URIs = []*url.URL{u}
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// startTLSServer serves the panel API over mTLS and returns its base URL.
func startTLSServer(t *testing.T, ca *testCA) (string, *PanelServer) {
	t.Helper()
	dir := t.TempDir()
	certPEM, keyPEM := ca.issue(t, 2, "", x509.ExtKeyUsageServerAuth)

	cfg := config.APIConfig{
		Address: "127.0.0.1:0",
		TLS: config.TLSConfig{
			Enabled:  true,
			CertFile: writeFile(t, dir, "server.pem", certPEM),
			KeyFile:  writeFile(t, dir, "server_key.pem", keyPEM),
			CAFile:   writeFile(t, dir, "ca.pem", ca.pem),
		},
	}

	ps := NewPanelServer(newTestCoordinator(t, nil), nil, nil)
	srv, err := NewHTTPServer(cfg, ps.Router())
	require.NoError(t, err)

	go func() { _ = srv.Serve() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return "https://" + srv.Addr().String(), ps
}

func tlsClient(roots *x509.CertPool, certs ...tls.Certificate) *http.Client {
	return &http.Client{
		Timeout: 3 * time.Second,
		Transport: &http.Transport{TLSClientConfig: &tls.Config{
			RootCAs:      roots,
			Certificates: certs,
			MinVersion:   tls.VersionTLS13,
		}},
	}
}

func caPool(ca *testCA) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(ca.pem)
	return pool
}

func keyPair(t *testing.T, certPEM, keyPEM []byte) tls.Certificate {
	t.Helper()
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)
	return cert
}

func TestServerApp_ServerExpectsTls(t *testing.T) {
	base, _ := startTLSServer(t, newTestCA(t, "ca"))

	plain := "http" + base[len("https"):]
	resp, err := (&http.Client{Timeout: 3 * time.Second}).Get(plain + apiv1.PathStatus)
	if err == nil {
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestServerApp_ServerExpectsClientCert(t *testing.T) {
	ca := newTestCA(t, "ca")
	base, _ := startTLSServer(t, ca)

	_, err := tlsClient(caPool(ca)).Get(base + apiv1.PathStatus)
	require.Error(t, err)
}

func TestServerApp_ServerExpectCorrectClientCa(t *testing.T) {
	ca := newTestCA(t, "ca")
	base, _ := startTLSServer(t, ca)

	fake := newTestCA(t, "fake ca")
	certPEM, keyPEM := fake.issue(t, 3, "spiffe://client1", x509.ExtKeyUsageClientAuth)

	_, err := tlsClient(caPool(ca), keyPair(t, certPEM, keyPEM)).Get(base + apiv1.PathStatus)
	require.Error(t, err)
}

func TestServerApp_ClientWithoutSpiffeId(t *testing.T) {
	ca := newTestCA(t, "ca")
	base, _ := startTLSServer(t, ca)
	certPEM, keyPEM := ca.issue(t, 4, "", x509.ExtKeyUsageClientAuth)

	resp, err := tlsClient(caPool(ca), keyPair(t, certPEM, keyPEM)).Get(base + apiv1.PathStatus)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServerApp_OnlyOwnerCanStop(t *testing.T) {
	ca := newTestCA(t, "ca")
	base, ps := startTLSServer(t, ca)
	ctx := context.Background()

	cert1, key1 := ca.issue(t, 5, "spiffe://client1", x509.ExtKeyUsageClientAuth)
	cert2, key2 := ca.issue(t, 6, "spiffe://client2", x509.ExtKeyUsageClientAuth)
	client1 := apiv1.NewClient(base, tlsClient(caPool(ca), keyPair(t, cert1, key1)))
	client2 := apiv1.NewClient(base, tlsClient(caPool(ca), keyPair(t, cert2, key2)))

	started, err := client1.Start(ctx)
	require.NoError(t, err)
	assert.True(t, started.Started)
	assert.Equal(t, "client1", started.Status.Owner)

	st, err := client2.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Running)

	_, err = client2.Stop(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apiv1.Code(err))

	stopped, err := client1.Stop(ctx)
	require.NoError(t, err)
	assert.True(t, stopped.Stopped)
	assert.Equal(t, "client1", ps.ownerName())
}

func TestServerApp_ShutdownEndsLogStream(t *testing.T) {
	ps := NewPanelServer(newTestCoordinator(t, nil), nil, nil)
	srv, err := NewHTTPServer(config.APIConfig{Address: "127.0.0.1:0"}, ps.Router())
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()

	resp, err := http.Get("http://" + srv.Addr().String() + apiv1.PathLogs + "?follow=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// The stream is closed by the server rather than by the deadline.
	dec := json.NewDecoder(resp.Body)
	var e apiv1.LogEntry
	assert.Error(t, dec.Decode(&e))
}
