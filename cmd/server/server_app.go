package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/SanjoDeundiak/devpanel/internal/config"
)

// HTTPServer encapsulates the optional mTLS configuration, the HTTP server
// and its listener.
type HTTPServer struct {
	lis    net.Listener
	s      *http.Server
	tls    bool
	cancel context.CancelFunc
}

// NewHTTPServer prepares handler to serve on cfg.Address. When cfg.TLS is
// enabled, clients must present a certificate signed by the configured CA.
func NewHTTPServer(cfg config.APIConfig, handler http.Handler) (*HTTPServer, error) {
	// Request contexts derive from baseCtx so Shutdown can end log streams.
	baseCtx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	if cfg.TLS.Enabled {
		tlsConfig, err := serverTLSConfig(cfg.TLS)
		if err != nil {
			cancel()
			return nil, err
		}
		srv.TLSConfig = tlsConfig
	}

	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	return &HTTPServer{lis: lis, s: srv, tls: cfg.TLS.Enabled, cancel: cancel}, nil
}

func serverTLSConfig(cfg config.TLSConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server key pair: %w", err)
	}

	caPEM, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	caPool := x509.NewCertPool()
	if ok := caPool.AppendCertsFromPEM(caPEM); !ok {
		return nil, fmt.Errorf("failed to append CA certificate to pool")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caPool,
		ClientCAs:    caPool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// Serve blocks until the server is shut down.
func (h *HTTPServer) Serve() error {
	var err error
	if h.tls {
		err = h.s.ServeTLS(h.lis, "", "")
	} else {
		err = h.s.Serve(h.lis)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr returns the network address the server is bound to.
func (h *HTTPServer) Addr() net.Addr { return h.lis.Addr() }

// Shutdown ends open log streams and gracefully stops the server.
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	h.cancel()
	err := h.s.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return h.s.Close()
	}
	return err
}
