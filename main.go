package main

import "github.com/tilmanv/piwake/cmd"

func main() {
	cmd.Execute()
}
