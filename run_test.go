package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redTileServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(256, color.NRGBA{R: 0xff, A: 0xff})))
	red := buf.Bytes()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("Referer") != DefaultReferer || r.Header.Get("User-Agent") != DefaultUserAgent {
			http.Error(w, "denied", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(red)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRunEndToEnd(t *testing.T) {
	srv, hits := redTileServer(t)
	dir := filepath.Join(t.TempDir(), "zoom-1")
	c := testConf(dir, 1)
	c.Tm.URL = srv.URL + "/vt?x={x}&y={y}&z={z}"

	out, err := Run(context.Background(), c, NewHTTPFetcher(c.TileMap(), 5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(hits))
	assert.Equal(t, expectedTileNames(t, 1), without(listDir(t, dir), CombinedName))

	img, err := loadImage(out)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 512, 512), img.Bounds())
	red := color.NRGBA{R: 0xff, A: 0xff}
	for y := 0; y < 512; y++ {
		for x := 0; x < 512; x++ {
			if got := color.NRGBAModel.Convert(img.At(x, y)); got != red {
				t.Fatalf("pixel (%d,%d) = %v, want solid red", x, y, got)
			}
		}
	}
}

func TestRunMissingHeadersDenied(t *testing.T) {
	srv, _ := redTileServer(t)
	c := testConf(t.TempDir(), 1)
	c.Tm.URL = srv.URL + "/vt?x={x}&y={y}&z={z}"
	c.Tm.Referer = ""

	_, err := Run(context.Background(), c, NewHTTPFetcher(c.TileMap(), 5*time.Second))
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestCombineValidatesConf(t *testing.T) {
	c := testConf(t.TempDir(), 1)
	c.Task.Workers = 0
	_, err := Combine(c)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func without(names []string, drop string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}

func TestNewCompositorBarOnStdout(t *testing.T) {
	c := testConf(t.TempDir(), 1)
	assert.Nil(t, newCompositor(c).BarOutput)

	c.Output.OutputTerminal = true
	assert.Equal(t, os.Stdout, newCompositor(c).BarOutput)
}
