package main

import "github.com/dayflow-hq/dayflow/cmd"

func main() {
	cmd.Execute()
}
