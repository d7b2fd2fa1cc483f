package main

import (
	"github.com/dealscope/dealscope/cmd"
)

func main() {
	cmd.Execute()
}
