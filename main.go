package main

import "github.com/tahsinm/registrar/cmd"

func main() {
	cmd.Execute()
}
