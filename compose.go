package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"time"

	"github.com/paulmach/orb/maptile"
	"golang.org/x/image/draw"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// Compositor 把 n x n 个瓦片文件拼成一张图
type Compositor struct {
	Dir  string
	Zoom int

	// BarOutput 进度条输出, 为空时不显示
	BarOutput io.Writer
}

// Combine 读取全部瓦片并写出 combined.png, 返回输出路径.
// 读取阶段任何失败都不会改动已有的 combined.png.
func (c *Compositor) Combine() (string, error) {
	log.Info("Combining images")
	tiles, err := GridTiles(c.Zoom)
	if err != nil {
		return "", err
	}
	n, _ := GridSize(c.Zoom)

	images := make(map[maptile.Tile]image.Image, len(tiles))
	for _, mt := range tiles {
		img, err := loadImage(TilePath(c.Dir, mt))
		if err != nil {
			var pathErr *fs.PathError
			switch {
			case isNotExist(err):
				return "", tileErr(mt, ErrMissingTile, err)
			case errors.As(err, &pathErr):
				return "", tileErr(mt, ErrFilesystem, err)
			default:
				return "", tileErr(mt, ErrDecode, err)
			}
		}
		images[mt] = img
	}

	canvas, err := c.drawTiles(tiles, images, n)
	if err != nil {
		return "", err
	}

	out := CombinedPath(c.Dir)
	if err := savePNG(out, canvas); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	log.Info("Image combining complete")
	return out, nil
}

// tileSize 取 (0,0) 的宽度, 所有瓦片必须是同样大小的正方形
func tileSize(tiles []maptile.Tile, images map[maptile.Tile]image.Image) (int, error) {
	if len(tiles) == 0 {
		return 0, nil
	}
	size := images[tiles[0]].Bounds().Dx()
	for _, mt := range tiles {
		b := images[mt].Bounds()
		if b.Dx() != size || b.Dy() != size {
			return 0, tileErr(mt, ErrTileSize, fmt.Errorf("expected %dx%d, got %dx%d", size, size, b.Dx(), b.Dy()))
		}
	}
	return size, nil
}

func (c *Compositor) drawTiles(tiles []maptile.Tile, images map[maptile.Tile]image.Image, n int) (*image.NRGBA, error) {
	size, err := tileSize(tiles, images)
	if err != nil {
		return nil, err
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, size*n, size*n))
	log.Debugf("canvas %dx%d, tile size %d", size*n, size*n, size)

	var bar *pb.ProgressBar
	if c.BarOutput != nil {
		bar = pb.New(len(tiles)).Prefix(fmt.Sprintf("Zoom %d : ", c.Zoom))
		bar.Output = c.BarOutput
		bar.SetRefreshRate(time.Second)
		bar.Start()
	}

	for _, mt := range tiles {
		img := images[mt]
		x, y := int(mt.X)*size, int(mt.Y)*size
		draw.Draw(canvas, image.Rect(x, y, x+size, y+size), img, img.Bounds().Min, draw.Src)
		// 画完即释放
		delete(images, mt)
		if bar != nil {
			bar.Increment()
		}
	}

	if bar != nil {
		bar.Finish()
	}
	return canvas, nil
}
