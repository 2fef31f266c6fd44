package main

import "github.com/sesdev/sesdev/cmd"

func main() {
	cmd.Execute()
}
