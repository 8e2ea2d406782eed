package main

import "github.com/ridoystarlord/schemaplan/cmd"

func main() {
	cmd.Execute()
}
