package main

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// 瓦片服务默认值, 服务端要求带 User-Agent 与 Referer, 否则拒绝请求
const (
	DefaultTileURL   = "https://mts1.googleapis.com/vt?hl=en-US&lyrs=svv|cb_client:apiv3&style=40,18&x={x}&y={y}&z={z}"
	DefaultUserAgent = "Route solver for grocery delivery"
	DefaultReferer   = "https://ruurdbijlsson.com"
)

// TileMap 瓦片地图类型
type TileMap struct {
	URL       string
	UserAgent string
	Referer   string
}

// GetTileURL 获取瓦片URL
func (m *TileMap) GetTileURL(t maptile.Tile) string {
	url := strings.Replace(m.URL, "{x}", strconv.Itoa(int(t.X)), -1)
	url = strings.Replace(url, "{y}", strconv.Itoa(int(t.Y)), -1)
	url = strings.Replace(url, "{z}", strconv.Itoa(int(t.Z)), -1)
	return url
}
