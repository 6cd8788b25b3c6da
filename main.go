package main

import "github.com/frahmantamala/mastersight/cmd"

func main() {
	cmd.Execute()
}
