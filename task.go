package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/sirupsen/logrus"
	"github.com/teris-io/shortid"
	"golang.org/x/sync/errgroup"
)

// Task 下载任务
type Task struct {
	ID      string
	Name    string
	Dir     string
	Zoom    int
	Total   int
	TileMap TileMap

	// Progress 每写完一个瓦片回调一次, 可为空
	Progress func(done, total int, path string)

	fetcher     TileFetcher
	workerCount int
	timeDelay   int

	mu   sync.Mutex
	done int
}

// NewTask 创建下载任务
func NewTask(c *Conf, fetcher TileFetcher) (*Task, error) {
	n, err := GridSize(c.Tm.Zoom)
	if err != nil {
		return nil, err
	}
	id, _ := shortid.Generate()

	task := &Task{
		ID:          id,
		Name:        c.Tm.Name,
		Dir:         c.Output.Directory,
		Zoom:        c.Tm.Zoom,
		Total:       n * n,
		TileMap:     c.TileMap(),
		fetcher:     fetcher,
		workerCount: c.Task.Workers,
		timeDelay:   c.Task.Timedelay,
	}
	if task.workerCount < 1 {
		task.workerCount = 1
	}
	log.Debugf("task %s (%s): zoom %d, grid %dx%d, tiles %d", task.ID, task.Name, task.Zoom, n, n, task.Total)
	return task, nil
}

// Done 已完成的瓦片数
func (task *Task) Done() int {
	task.mu.Lock()
	defer task.mu.Unlock()
	return task.done
}

// Download 开启下载任务, 任一瓦片失败即终止
func (task *Task) Download(ctx context.Context) error {
	log.Info("Starting download tiles")
	if err := ensureDir(task.Dir); err != nil {
		return err
	}
	tiles, err := GridTiles(task.Zoom)
	if err != nil {
		return err
	}

	task.mu.Lock()
	task.done = 0
	task.mu.Unlock()

	if task.workerCount == 1 {
		err = task.downloadSequential(ctx, tiles)
	} else {
		err = task.downloadParallel(ctx, tiles)
	}
	if err != nil {
		return err
	}
	log.Info("Done!")
	return nil
}

func (task *Task) downloadSequential(ctx context.Context, tiles []maptile.Tile) error {
	for i, mt := range tiles {
		if i > 0 {
			if err := task.delay(ctx); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task.tileFetcher(ctx, mt); err != nil {
			return err
		}
	}
	return nil
}

// downloadParallel 固定数量的 worker 并发下载, 第一个错误取消其余请求
func (task *Task) downloadParallel(ctx context.Context, tiles []maptile.Tile) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(task.workerCount)
	log.Debugf("task %s: %d workers", task.ID, task.workerCount)

	for i, mt := range tiles {
		if i > 0 {
			if err := task.delay(gctx); err != nil {
				break
			}
		}
		if gctx.Err() != nil {
			break
		}
		mt := mt
		g.Go(func() error {
			return task.tileFetcher(gctx, mt)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// delay 请求发送间隔时间
func (task *Task) delay(ctx context.Context) error {
	if task.timeDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(task.timeDelay) * time.Millisecond):
		return nil
	}
}

// tileFetcher 下载, 解码并保存单个瓦片
func (task *Task) tileFetcher(ctx context.Context, mt maptile.Tile) error {
	start := time.Now()

	body, err := task.fetcher.Fetch(ctx, mt)
	if err != nil {
		var te *TileError
		if errors.As(err, &te) {
			return err
		}
		return tileErr(mt, ErrNetwork, err)
	}

	img, format, err := decodeImage(body)
	if err != nil {
		return tileErr(mt, ErrDecode, err)
	}

	path := TilePath(task.Dir, mt)
	if err := savePNG(path, img); err != nil {
		return tileErr(mt, ErrFilesystem, err)
	}

	task.mu.Lock()
	task.done++
	done := task.done
	log.Infof("Downloaded %.1f%%: %s", Percent(done, task.Total), path)
	if task.Progress != nil {
		task.Progress(done, task.Total, path)
	}
	task.mu.Unlock()

	cost := time.Since(start).Milliseconds()
	log.WithFields(logrus.Fields{
		"format": format,
		"bound":  mt.Bound(),
	}).Debugf("tile(z:%d, x:%d, y:%d), %dms , %.2f kb, %s", mt.Z, mt.X, mt.Y, cost, float32(len(body))/1024.0, task.TileMap.GetTileURL(mt))
	return nil
}
