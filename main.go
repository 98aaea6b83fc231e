package main

import "github.com/starsandeep/sfsync/cmd"

func main() {
	cmd.Execute()
}
