package main

import "github.com/bryan-buckman/newsdigest/cmd"

func main() {
	cmd.Execute()
}
