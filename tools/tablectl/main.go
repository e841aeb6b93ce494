package main

import "github.com/sajid-karim/tablebook/tools/tablectl/cmd"

func main() {
	cmd.Execute()
}
