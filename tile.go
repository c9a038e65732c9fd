package main

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb/maptile"
)

// ZoomMin 最小级别
const ZoomMin = 0

// ZoomMax 最大级别, 再大画布尺寸会溢出
const ZoomMax = 20

// DefaultZoom 默认下载级别
const DefaultZoom = 5

// PNG 瓦片与拼接图的唯一输出格式
const PNG = "png"

// CombinedName 拼接图文件名
const CombinedName = "combined.png"

// 流水线返回的错误类型
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")
	ErrMissingTile  = errors.New("missing tile")
	ErrFilesystem   = errors.New("filesystem error")
	ErrTileSize     = errors.New("tile size mismatch")
)

// TileError 单个瓦片失败, errors.Is 同时匹配 Kind 与 Err
type TileError struct {
	Tile maptile.Tile
	Kind error
	Err  error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("tile(z:%d, x:%d, y:%d): %v: %v", e.Tile.Z, e.Tile.X, e.Tile.Y, e.Kind, e.Err)
}

func (e *TileError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func tileErr(t maptile.Tile, kind, err error) error {
	return &TileError{Tile: t, Kind: kind, Err: err}
}
