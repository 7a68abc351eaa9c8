package main

import "github.com/screentel/screentel/cmd/screentel/cmd"

func main() {
	cmd.Execute()
}
