package main

import (
	"github.com/haxorport/rawrelay/cmd"
)

func main() {
	cmd.Execute()
}
