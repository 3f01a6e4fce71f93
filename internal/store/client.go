package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dharshini/agiletrack/internal/model"
)

// Recorder はストア呼び出しのメトリクス記録インターフェース。
// metricsパッケージのCollectorが実装する。nilの場合は記録しない。
type Recorder interface {
	RecordStoreRequest(collection, method string, statusCode int)
	RecordStoreLatency(duration time.Duration)
}

// Client はリソースストアへのHTTPクライアント。
// コレクションごとの型付きストア（UserStore等）の共通基盤として、
// list/get/create/patchのリクエスト発行とエラー変換を担う。
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	recorder   Recorder
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientにはタイムアウトを設定したものを渡すこと。
// recorderはnilでもよい。
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger, recorder Recorder) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		recorder:   recorder,
	}
}

// errorBody はストアが返す統一エラーフォーマット。
type errorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
	Field    string `json:"field,omitempty"`
}

// list はコレクションをクエリ付きで取得し、outへデコードする。
func (c *Client) list(ctx context.Context, collection string, query url.Values, out any) error {
	path := "/" + collection
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, collection, path, nil, out)
}

// get は指定IDのレコードを取得し、outへデコードする。
// 存在しない場合はErrNotFoundを返す。
func (c *Client) get(ctx context.Context, collection, id string, out any) error {
	return c.do(ctx, http.MethodGet, collection, "/"+collection+"/"+url.PathEscape(id), nil, out)
}

// create はレコードを作成し、ストアが採番したIDを含む結果をoutへデコードする。
func (c *Client) create(ctx context.Context, collection string, body, out any) error {
	return c.do(ctx, http.MethodPost, collection, "/"+collection, body, out)
}

// patch は指定IDのレコードを部分更新し、更新後の結果をoutへデコードする。
func (c *Client) patch(ctx context.Context, collection, id string, body, out any) error {
	return c.do(ctx, http.MethodPatch, collection, "/"+collection+"/"+url.PathEscape(id), body, out)
}

// do はHTTPリクエストを発行し、レスポンスをoutへデコードする。
// トランスポート障害はRemoteUnavailableエラーに包む。
// 4xx/5xxはストアのエラーボディをAPIErrorへ復元して返す
// （重複キー拒否の409は回復可能なDuplicate系エラーとしてそのまま伝播する）。
func (c *Client) do(ctx context.Context, method, collection, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create store request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.recorder != nil {
		c.recorder.RecordStoreLatency(time.Since(start))
	}
	if err != nil {
		c.logger.Error("store request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		if c.recorder != nil {
			c.recorder.RecordStoreRequest(collection, method, 0)
		}
		return model.NewRemoteUnavailableError(err.Error())
	}
	defer resp.Body.Close()

	if c.recorder != nil {
		c.recorder.RecordStoreRequest(collection, method, resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.logger.Error("failed to decode store response",
				slog.String("method", method),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return model.NewRemoteUnavailableError("invalid response body")
		}
	}

	return nil
}

// decodeError はエラーレスポンスのボディをAPIErrorへ復元する。
// ボディが統一フォーマットでない場合はRemoteUnavailableとして扱う。
func (c *Client) decodeError(resp *http.Response, method, path string) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Code != "" {
		c.logger.Warn("store rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("code", body.Code),
		)
		return &model.APIError{
			Code:     body.Code,
			Message:  body.Message,
			Category: body.Category,
			Action:   body.Action,
			Field:    body.Field,
		}
	}

	c.logger.Error("store returned unexpected status",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)
	return model.NewRemoteUnavailableError(fmt.Sprintf("store returned status %d", resp.StatusCode))
}
