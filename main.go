package main

import "github.com/jcdickinson/rsdocmd/cmd"

func main() {
	cmd.Execute()
}
