package main

import "github.com/jsphweid/scoreflow/cmd"

func main() {
	cmd.Execute()
}
