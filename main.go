package main

import (
	"fmt"
	"os"

	cmd "github.com/landform/landform/cmd/landform"
)

func main() {
	err := cmd.Landform.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
