package main

import "github.com/kozaktomas/appraisal-gallery/cmd"

func main() {
	cmd.Execute()
}
