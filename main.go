package main

import (
	"os"

	"github.com/yahiaetman/imgcmp/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
