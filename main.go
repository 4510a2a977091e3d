package main

import "github.com/instytutkryptografii/lektor/cmd"

func main() {
	cmd.Execute()
}
