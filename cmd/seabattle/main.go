package main

import "github.com/Nakonechnik/SeaBattle/internal/cli"

func main() {
	cli.Execute()
}
