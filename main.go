package main

import "psrun/cmd"

func main() {
	cmd.Execute()
}
