// Package httpclient provides the shared HTTP client used for fetching
// remote pattern files. It retries transient failures and honors the
// HTTP_PROXY environment variable.
package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

// ignoreProxy controls whether the HTTP_PROXY environment variable should be
// ignored. Uses atomic operations for thread-safe access.
var ignoreProxy atomic.Bool

// SetIgnoreProxy sets whether to ignore the HTTP_PROXY environment variable.
func SetIgnoreProxy(ignore bool) {
	ignoreProxy.Store(ignore)
}

// HeaderRoundTripper is an http.RoundTripper that adds default headers to
// requests. Headers are only added if they're not already present.
type HeaderRoundTripper struct {
	Headers map[string]string
	Next    http.RoundTripper
}

func (hrt *HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if hrt.Next == nil {
		return nil, http.ErrNotSupported
	}

	for k, v := range hrt.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	return hrt.Next.RoundTrip(req)
}

// GetHTTPClient creates a retryable HTTP client. 429 and 5xx responses
// (except 501) are retried, as are transport-level errors.
func GetHTTPClient(defaultHeaders map[string]string) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil

	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			log.Error().Err(err).Msg("Retrying HTTP request, error occurred")
			return true, nil
		}

		if resp == nil {
			log.Error().Msg("Retrying HTTP request, no response")
			return false, nil
		}

		if resp.StatusCode == 429 || (resp.StatusCode >= 500 && resp.StatusCode != 501) {
			url := ""
			if resp.Request != nil && resp.Request.URL != nil {
				url = resp.Request.URL.String()
			}
			log.Trace().Str("url", url).Int("statusCode", resp.StatusCode).Msg("Retrying HTTP request")
			return true, nil
		}

		return false, nil
	}

	tr := &http.Transport{}
	if !ignoreProxy.Load() {
		proxyServer, useHttpProxy := os.LookupEnv("HTTP_PROXY")
		if useHttpProxy {
			proxyUrl, err := url.Parse(proxyServer)
			if err != nil {
				log.Fatal().Err(err).Str("HTTP_PROXY", proxyServer).Msg("Invalid Proxy URL in HTTP_PROXY environment variable")
			}
			log.Info().Str("proxy", proxyUrl.String()).Msg("Using HTTP_PROXY")
			tr.Proxy = http.ProxyURL(proxyUrl)
		}
	}

	client.HTTPClient.Transport = &HeaderRoundTripper{Headers: defaultHeaders, Next: tr}
	return client
}
