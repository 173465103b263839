package main

import (
	"github.com/appetiteclub/seating/cmd/utils/internal/commands"
)

func main() {
	commands.Execute()
}
