package http

import (
	"net"
	"net/http"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
)

// NewHTTPClient は外部サービス (AWS SES など) 呼び出し用のHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTPS_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト
//   - MaxIdleConnsPerHost: 同一エンドポイントへの接続再利用数
//   - ResponseHeaderTimeout: ヘッダー受信までの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（0以下の場合は30秒）
//
// AWS SDK が AWS_CA_BUNDLE などでトランスポートを差し替えられるよう、
// *http.Client ではなく BuildableClient を返します。
// http.DefaultClientにはタイムアウトがないため使用しないこと。
func NewHTTPClient(timeout time.Duration) *awshttp.BuildableClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return awshttp.NewBuildableClient().
		WithTimeout(timeout).
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = 5 * time.Second
			d.KeepAlive = 30 * time.Second
		}).
		WithTransportOptions(func(t *http.Transport) {
			t.Proxy = http.ProxyFromEnvironment
			t.ForceAttemptHTTP2 = true
			t.MaxIdleConns = 50
			t.MaxIdleConnsPerHost = 10
			t.IdleConnTimeout = 90 * time.Second
			t.TLSHandshakeTimeout = 5 * time.Second
			t.ResponseHeaderTimeout = timeout
		})
}
