package main

import (
	"wavefm/cmd"
)

func main() {
	cmd.Execute()
}
