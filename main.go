package main

import "github.com/LegacyCodeHQ/codegraph/cmd"

func main() {
	cmd.Execute()
}
