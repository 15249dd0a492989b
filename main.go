package main

import (
	"github.com/meysamhadeli/kotpad/cmd"
)

func main() {
	cmd.Execute()
}
