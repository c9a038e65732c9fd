package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/shiena/ansicolor"
)

var log = logrus.New()

// logTerminal 日志是否会出现在终端上, 否则致命错误需另写 stderr
var logTerminal = true

// InitLog 初始化日志
func InitLog(c *Conf, logLevel string) error {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		ShowFullLevel:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logIO := make([]io.Writer, 0)
	if c.Output.LogDir != "" {
		if err := os.MkdirAll(c.Output.LogDir, os.ModePerm); err != nil {
			return fmt.Errorf("%w: create log dir: %v", ErrFilesystem, err)
		}
		filename := filepath.Join(c.Output.LogDir, time.Now().Format("2006-01-02.log"))
		file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			return fmt.Errorf("%w: open log file: %v", ErrFilesystem, err)
		}
		logIO = append(logIO, file)
	}
	if c.Output.OutputTerminal {
		logIO = append(logIO, os.Stdout)
	}
	logTerminal = c.Output.OutputTerminal
	if len(logIO) == 0 {
		logIO = append(logIO, io.Discard)
	}

	// 融合日志输出
	log.SetOutput(ansicolor.NewAnsiColorWriter(io.MultiWriter(logIO...)))

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.Warnf("unknown log level %q, using info", logLevel)
	} else {
		log.SetLevel(level)
	}
	return nil
}
