package main

import "Stockbook/cmd"

func main() {
	cmd.Execute()
}
