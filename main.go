package main

import "github.com/foodregister/regnotify/cmd"

func main() {
	cmd.Execute()
}
