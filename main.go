package main

import "togglepace/cmd"

func main() {
	cmd.Execute()
}
