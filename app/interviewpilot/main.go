package main

import "github.com/yoockh/interviewpilot/internal/cli"

func main() {
	cli.Execute()
}
