package main

import "amigaio/cmd"

func main() {
	cmd.Execute()
}
