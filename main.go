package main

import "github.com/chupakbra/pbadm/cli"

func main() {
	cli.Execute()
}
