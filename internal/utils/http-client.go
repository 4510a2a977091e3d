package utils

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

type HTTPClientConfig struct {
	Timeout       time.Duration
	KATimeout     time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	Headers       map[string]string
	Cookies       map[string]string
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
	SetHeader(key, value string)
}

// LektorHTTPClient wraps http.Client so every request carries the profile's
// user agent, headers and cookies without call sites repeating them.
type LektorHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func NewLektorHTTPClient(cfg HTTPClientConfig) *LektorHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultRequestTimeout
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 60 * time.Second
	}
	// Compression stays off so ranged responses arrive byte-exact; the
	// profile asks for identity encoding anyway.
	transport := &http.Transport{
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		DisableCompression:  true,
		MaxConnsPerHost:     0,
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			log.Error().Err(err).Str("proxy", cfg.ProxyURL).Msg("Invalid proxy URL, proceeding without proxy")
		} else {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &LektorHTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config: cfg,
	}
}

func (l *LektorHTTPClient) SetHeader(key, value string) {
	if l.config.Headers == nil {
		l.config.Headers = make(map[string]string)
	}
	l.config.Headers[key] = value
}

func (l *LektorHTTPClient) Do(req *http.Request) (*http.Response, error) {
	for k, v := range l.config.Headers {
		req.Header.Set(k, v)
	}
	// An explicit user agent (flag or randomize) wins over the profile's.
	if l.config.UserAgent != "" {
		req.Header.Set("User-Agent", l.config.UserAgent)
	}
	for name, value := range l.config.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return l.client.Do(req)
}
