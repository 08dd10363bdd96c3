package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// NewHTTPClient returns an HTTP client that reaches the network through
// proxyURL. Supported schemes are http, https and socks5; an empty proxyURL
// gives a direct client.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	client := &http.Client{Transport: transport, Timeout: timeout}
	if proxyURL == "" {
		return client, nil
	}

	proxyURLParsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %v", err)
	}

	switch proxyURLParsed.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(proxyURLParsed)
	case "socks5":
		var auth *proxy.Auth
		if proxyURLParsed.User != nil {
			auth = &proxy.Auth{User: proxyURLParsed.User.Username()}
			auth.Password, _ = proxyURLParsed.User.Password()
		}
		dialer, errSOCKS5 := proxy.SOCKS5("tcp", proxyURLParsed.Host, auth, proxy.Direct)
		if errSOCKS5 != nil {
			return nil, fmt.Errorf("failed to create proxy dialer: %v", errSOCKS5)
		}
		transport.Proxy = nil
		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = contextDialer.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", proxyURLParsed.Scheme)
	}
	return client, nil
}
