package main

import (
	"github.com/modsorter/modsorter/cmd"
)

func main() {
	cmd.Execute()
}
