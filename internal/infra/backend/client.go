package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/metrics"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Credentials はセッションが持つベアラートークン。
// 401を受けたら ClearCredential が呼ばれる。
type Credentials interface {
	BearerToken() string
	ClearCredential()
}

type Options struct {
	BaseURL     string
	Timeout     time.Duration // 0 は無制限
	MaxFailures uint32        // 連続失敗でブレーカーを開く
	OpenTimeout time.Duration
	Transport   http.RoundTripper
	Logger      *slog.Logger
}

// Client はバックエンドへの共有接続（ブレーカーもプロセスで1つ）
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*response]
	log     *slog.Logger
}

type response struct {
	status int
	body   []byte
}

// 5xxはブレーカーの失敗として数える
var errServerStatus = errors.New("server error status")

func NewClient(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		log: logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:    "backend",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return c
}

// Bind はセッションの資格情報を付けて呼ぶ Gateway を返す。creds が nil なら匿名。
func (c *Client) Bind(creds Credentials) *Gateway {
	return &Gateway{c: c, creds: creds}
}

func (c *Client) execute(req *http.Request) (*response, error) {
	res, err := c.breaker.Execute(func() (*response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		out := &response{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return out, errServerStatus
		}
		return out, nil
	})

	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, errServerStatus):
		return res, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %v", repo.ErrUnavailable, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %v", repo.ErrUnavailable, err)
	}
}

// Gateway は1セッション分のバックエンドAPI。
// CartGateway / CheckoutGateway / CatalogGateway / AccountGateway / AdminGateway を満たす。
type Gateway struct {
	c     *Client
	creds Credentials
}

type callOption func(h http.Header)

func withHeader(key string, value string) callOption {
	return func(h http.Header) {
		if value != "" {
			h.Set(key, value)
		}
	}
}

func (g *Gateway) call(ctx context.Context, method string, path string, in any, out any, opts ...callOption) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.creds != nil {
		if tok := g.creds.BearerToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	for _, opt := range opts {
		opt(req.Header)
	}

	resp, err := g.c.execute(req)
	if err != nil {
		metrics.BackendCalls.WithLabelValues(method, "error").Inc()
		g.c.log.Warn("backend call failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return err
	}
	metrics.BackendCalls.WithLabelValues(method, strconv.Itoa(resp.status)).Inc()

	//401はどこで起きても資格情報を消す
	if resp.status == http.StatusUnauthorized {
		if g.creds != nil {
			g.creds.ClearCredential()
		}
		return fmt.Errorf("%s %s: %w", method, path, repo.ErrUnauthorized)
	}
	if resp.status < 200 || resp.status >= 300 {
		return &repo.APIError{Status: resp.status, Message: errorMessage(resp.body)}
	}

	return decodeData(resp.status, resp.body, out)
}

var (
	_ repo.CartGateway     = (*Gateway)(nil)
	_ repo.CheckoutGateway = (*Gateway)(nil)
	_ repo.CatalogGateway  = (*Gateway)(nil)
	_ repo.AccountGateway  = (*Gateway)(nil)
	_ repo.AdminGateway    = (*Gateway)(nil)
)
