package main

import "github.com/jrsteele09/go-car-rental/cmd/carrental/cmd"

func main() {
	cmd.Execute()
}
