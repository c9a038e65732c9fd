package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute 运行命令并返回退出码, 终端看不到日志时把错误写到 stderr
func execute(args []string, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		log.Error(err)
		if !logTerminal {
			fmt.Fprintln(stderr, "tilestitch:", err)
		}
		return 1
	}
	return 0
}
