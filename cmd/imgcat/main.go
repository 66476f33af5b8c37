package main

import "github.com/blacktop/go-termrender/cmd/imgcat/cmd"

func main() {
	cmd.Execute()
}
