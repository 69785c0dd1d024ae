package main

import "github.com/truemediaorg/brandwatch/cmd"

func main() {
	cmd.Execute()
}
