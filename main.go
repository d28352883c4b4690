package main

import "github.com/balasai14/multi-face-reg/cmd"

func main() {
	cmd.Execute()
}
