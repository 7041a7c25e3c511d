package main

import "github.com/nexcodes/softec-25-sub000/cmd"

func main() {
	cmd.Execute()
}
