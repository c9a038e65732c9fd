package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"

	// 瓦片服务可能返回的格式
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ensureDir 目录不存在则创建
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	return nil
}

func decodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New("empty body")
	}
	return image.Decode(bytes.NewReader(data))
}

// savePNG 先写临时文件再改名, 失败时不留下半截文件
func savePNG(path string, img image.Image) error {
	tmpName := path + ".tmp"
	tmp, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmpName, err)
	}

	encErr := png.Encode(tmp, img)
	closeErr := tmp.Close()
	if encErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("encode %s: %w", path, encErr)
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, closeErr)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// loadImage 读取磁盘上的图片, 文件不存在时返回 fs.ErrNotExist
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
