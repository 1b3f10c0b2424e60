// Package http builds the outbound client used to reach the remote identity server.
package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultIdentityTimeout bounds a single identity-server call when none is configured.
const DefaultIdentityTimeout = 10 * time.Second

// NewIdentityClient は認証サーバー（GoTrue）専用のHTTPクライアントを返します。
// 接続先は1ホストのみなので、アイドル接続はそのホスト向けにまとめて保持します。
// timeout が0以下の場合は DefaultIdentityTimeout を使います。
func NewIdentityClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultIdentityTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			DialContext:       (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			ForceAttemptHTTP2: true,
			// ログインとトークン検証が集中しても同じ接続を使い回す
			MaxIdleConns:          32,
			MaxIdleConnsPerHost:   32,
			IdleConnTimeout:       60 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
	}
}
