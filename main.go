package main

import "github.com/frahmantamala/timesheet/cmd"

func main() {
	cmd.Execute()
}
