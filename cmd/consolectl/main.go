package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	root := defaultCommandFactory.CreateRootCommand(&Flags{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
