package main

import "github.com/gaurav-prasanna/scrape/cmd"

func main() {
	cmd.Execute()
}
