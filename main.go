package main

import "intake/cmd"

func main() {
	cmd.Execute()
}
