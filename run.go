package main

import (
	"context"
	"os"
	"time"
)

// Run 下载全部瓦片后再拼接, 两个阶段之间没有重叠
func Run(ctx context.Context, c *Conf, fetcher TileFetcher) (string, error) {
	start := time.Now()

	task, err := NewTask(c, fetcher)
	if err != nil {
		return "", err
	}
	if err := task.Download(ctx); err != nil {
		return "", err
	}

	out, err := newCompositor(c).Combine()
	if err != nil {
		return "", err
	}

	secs := time.Since(start).Seconds()
	log.Infof("%.3fs finished...", secs)
	return out, nil
}

// Combine 只运行拼接阶段
func Combine(c *Conf) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return newCompositor(c).Combine()
}

func newCompositor(c *Conf) *Compositor {
	comp := &Compositor{
		Dir:  c.Output.Directory,
		Zoom: c.Tm.Zoom,
	}
	if c.Output.OutputTerminal {
		comp.BarOutput = os.Stdout
	}
	return comp
}
