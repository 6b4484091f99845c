package main

import "github.com/DrSkyle/cloudstamp/cmd/cloudstamp/commands"

func main() {
	commands.Execute()
}
