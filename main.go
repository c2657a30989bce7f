package main

import "github.com/speakbetter/speech-coach/cmd"

func main() {
	cmd.Execute()
}
