package main

import "github.com/yungbote/ssmlcast/internal/cli"

func main() {
	cli.Execute()
}
