// Package poller reports connectivity of an HTTP stats endpoint by reading a
// single integer field from its JSON body.
package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultField   = "activeUsers"
	DefaultTimeout = 2 * time.Second
	DefaultPeriod  = 2 * time.Second

	maxBodySize = 1 << 20
)

// Kind classifies a failed poll that is not a connection failure.
type Kind int

const (
	KindTransport Kind = iota
	KindTimeout
	KindBadStatus
	KindBadPayload
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindBadStatus:
		return "bad_status"
	case KindBadPayload:
		return "bad_payload"
	default:
		return "transport"
	}
}

// PollError is returned by Poll for every failure that leaves the reported
// status unchanged.
type PollError struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *PollError) Error() string {
	if e.Kind == KindBadStatus {
		return fmt.Sprintf("poll %s: HTTP %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("poll %s: %v", e.Kind, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// Poller issues GET requests against one URL.
type Poller struct {
	url     string
	field   string
	timeout time.Duration
	period  time.Duration
	client  *http.Client
	logger  *zap.Logger
}

type Option func(*Poller)

// WithField sets the gjson path of the count field.
func WithField(path string) Option {
	return func(p *Poller) {
		if path != "" {
			p.field = path
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithPeriod(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.period = d
		}
	}
}

func WithClient(c *http.Client) Option {
	return func(p *Poller) {
		if c != nil {
			p.client = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Poller for url.
func New(url string, opts ...Option) *Poller {
	p := &Poller{
		url:     url,
		field:   DefaultField,
		timeout: DefaultTimeout,
		period:  DefaultPeriod,
		client:  http.DefaultClient,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) URL() string           { return p.url }
func (p *Poller) Period() time.Duration { return p.period }

// Poll performs one request bounded by the poller timeout.
//
// A connection failure yields Connecting with a nil error. Any other failure
// yields a *PollError and the returned status must be ignored.
func (p *Poller) Poll(ctx context.Context) (lib.Connectivity, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return lib.Connectivity{}, &PollError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if isConnectFailure(err) {
			return lib.ConnectingStatus(), nil
		}
		return lib.Connectivity{}, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return lib.Connectivity{}, &PollError{Kind: KindBadStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return lib.Connectivity{}, classify(err)
	}

	count, err := extractCount(body, p.field)
	if err != nil {
		return lib.Connectivity{}, &PollError{Kind: KindBadPayload, StatusCode: resp.StatusCode, Err: err}
	}
	return lib.OnlineStatus(count), nil
}

// Run polls once per period until running reports false or ctx is done.
// Successful polls and connection failures are passed to report; other
// failures leave the previous status in place. A failure is logged and passed
// to fail only when its kind differs from the previous poll's failure, so a
// dead endpoint does not flood the log.
func (p *Poller) Run(ctx context.Context, running func() bool, report func(lib.Connectivity), fail func(*PollError)) {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	var last *PollError
	for running() {
		status, err := p.Poll(ctx)
		if !running() {
			return
		}
		if err != nil {
			var pe *PollError
			if !errors.As(err, &pe) {
				pe = &PollError{Kind: KindTransport, Err: err}
			}
			if last == nil || last.Kind != pe.Kind {
				p.logger.Warn("poll failed", zap.String("url", p.url), zap.Stringer("kind", pe.Kind), zap.Error(pe))
				if fail != nil {
					fail(pe)
				}
			} else {
				p.logger.Debug("poll still failing", zap.String("url", p.url), zap.Error(pe))
			}
			last = pe
		} else {
			if last != nil {
				p.logger.Info("poll recovered", zap.String("url", p.url))
				last = nil
			}
			if report != nil {
				report(status)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func extractCount(body []byte, field string) (int, error) {
	if !gjson.ValidBytes(body) {
		return 0, errors.New("malformed JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return 0, fmt.Errorf("expected JSON object, got %s", root.Type)
	}

	v := root.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return 0, nil
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("field %q is %s, not a number", field, v.Type)
	}
	n := v.Int()
	if float64(n) != v.Num || n < 0 {
		return 0, fmt.Errorf("field %q is not a non-negative integer: %s", field, v.Raw)
	}
	return int(n), nil
}

// isConnectFailure reports whether err happened before a connection was
// established: refused, unreachable, DNS failure or connect timeout.
func isConnectFailure(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func classify(err error) *PollError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &PollError{Kind: KindTimeout, Err: err}
	}
	return &PollError{Kind: KindTransport, Err: err}
}
