package main

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

const defaultAddress = "localhost:50051"

// clientEnv holds the connection settings read from the environment.
type clientEnv struct {
	Address string
	KeyPEM  string
	CertPEM string
	CAPEM   string
}

func readClientEnv() clientEnv {
	env := clientEnv{
		Address: strings.TrimSpace(os.Getenv("DPN_ADDRESS")),
		KeyPEM:  os.Getenv("DPN_TLS_KEY"),
		CertPEM: os.Getenv("DPN_TLS_CERT"),
		CAPEM:   os.Getenv("DPN_CA_TLS_CERT"),
	}
	if env.Address == "" {
		env.Address = defaultAddress
	}
	return env
}

// tlsSet reports how many of the three TLS variables are present.
func (e clientEnv) tlsSet() int {
	n := 0
	for _, v := range []string{e.KeyPEM, e.CertPEM, e.CAPEM} {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// dial builds an API client. Without TLS variables it talks plain HTTP; with
// all three it uses mutual TLS.
func dial(env clientEnv, timeout time.Duration) (*apiv1.Client, error) {
	hc := &http.Client{Timeout: timeout}

	switch env.tlsSet() {
	case 0:
		return apiv1.NewClient("http://"+env.Address, hc), nil
	case 3:
	default:
		return nil, fmt.Errorf("incomplete TLS environment; require DPN_TLS_KEY, DPN_TLS_CERT, DPN_CA_TLS_CERT")
	}

	cert, err := tls.X509KeyPair([]byte(env.CertPEM), []byte(env.KeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse TLS cert/key from env: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(env.CAPEM)) {
		return nil, fmt.Errorf("failed to parse CA cert from env")
	}

	hc.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			RootCAs:      pool,
			MinVersion:   tls.VersionTLS13,
		},
	}
	return apiv1.NewClient("https://"+env.Address, hc), nil
}
