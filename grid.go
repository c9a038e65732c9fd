package main

import (
	"fmt"
	"path/filepath"

	"github.com/paulmach/orb/maptile"
)

// GridSize 每个轴上的瓦片数 2^zoom
func GridSize(zoom int) (int, error) {
	if zoom < ZoomMin || zoom > ZoomMax {
		return 0, fmt.Errorf("%w: zoom %d out of range [%d, %d]", ErrInvalidInput, zoom, ZoomMin, ZoomMax)
	}
	return 1 << uint(zoom), nil
}

// GridTiles 按下载顺序列出全部瓦片, x 在外层, y 在内层
func GridTiles(zoom int) ([]maptile.Tile, error) {
	n, err := GridSize(zoom)
	if err != nil {
		return nil, err
	}
	tiles := make([]maptile.Tile, 0, n*n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			tiles = append(tiles, maptile.New(uint32(x), uint32(y), maptile.Zoom(zoom)))
		}
	}
	return tiles, nil
}

// TilePath 瓦片文件路径 {dir}/{x}-{y}.png
func TilePath(dir string, t maptile.Tile) string {
	return filepath.Join(dir, fmt.Sprintf("%d-%d.%s", t.X, t.Y, PNG))
}

// CombinedPath 拼接图路径
func CombinedPath(dir string) string {
	return filepath.Join(dir, CombinedName)
}

// Percent 完成百分比, 向下取整到一位小数
func Percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done*1000/total) / 10
}
