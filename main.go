package main

import "todo-items.com/todo-items/cmd"

func main() {
	cmd.Execute()
}
