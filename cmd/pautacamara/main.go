package main

import (
	"github.com/camaradevs/pautacamara/internal/cmd"
)

func main() {
	cmd.Execute()
}
