package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb/maptile"
)

// TileFetcher 取回单个瓦片的原始字节
type TileFetcher interface {
	Fetch(ctx context.Context, t maptile.Tile) ([]byte, error)
}

// HTTPFetcher 通过 HTTP GET 从瓦片服务下载
type HTTPFetcher struct {
	TileMap TileMap
	client  *http.Client
}

// NewHTTPFetcher 创建下载器, timeout 为 0 时不限时
func NewHTTPFetcher(m TileMap, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		TileMap: m,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch 请求失败或非 2xx 状态均返回 ErrNetwork
func (f *HTTPFetcher) Fetch(ctx context.Context, t maptile.Tile) ([]byte, error) {
	url := f.TileMap.GetTileURL(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, tileErr(t, ErrNetwork, fmt.Errorf("create request: %w", err))
	}
	if f.TileMap.UserAgent != "" {
		req.Header.Set("User-Agent", f.TileMap.UserAgent)
	}
	if f.TileMap.Referer != "" {
		req.Header.Set("Referer", f.TileMap.Referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, tileErr(t, ErrNetwork, fmt.Errorf("fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, tileErr(t, ErrNetwork, fmt.Errorf("fetch %s: status code %d", url, resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tileErr(t, ErrNetwork, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}
