package main

import "collection-manager/cmd"

func main() {
	cmd.Execute()
}
