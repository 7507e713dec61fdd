/*
Copyright © 2026 Paulo Suderio
*/
package main

import "github.com/suderio/scenario-engine/cmd"

func main() {
	cmd.Execute()
}
