package main

import (
	"github.com/answerscope/answerscope/cmd"
)

func main() {
	cmd.Execute()
}
