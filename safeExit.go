package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SafeExit 收到退出信号时依次执行注册的清理函数
type SafeExit struct {
	funcs []func()
	mu    sync.Mutex
	sigs  chan os.Signal
	once  sync.Once
}

// NewSafeExit 返回的 context 在收到信号时被取消
func NewSafeExit(parent context.Context) (*SafeExit, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s := &SafeExit{sigs: make(chan os.Signal, 1)}
	s.Register(cancel)
	signal.Notify(s.sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go s.listenSignal()
	return s, ctx
}

func (s *SafeExit) Register(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.funcs = append(s.funcs, f)
}

func (s *SafeExit) exit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.funcs {
		f()
	}
	s.funcs = nil
}

// Stop 停止监听并执行清理
func (s *SafeExit) Stop() {
	s.once.Do(func() {
		signal.Stop(s.sigs)
		close(s.sigs)
	})
	s.exit()
}

func (s *SafeExit) listenSignal() {
	sig, ok := <-s.sigs
	if !ok {
		return
	}
	log.Warnf("received signal %v, stopping task, please wait", sig)
	s.exit()
}
