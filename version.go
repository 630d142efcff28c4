package main

import "fmt"

var _version = "dev"

type versionCmd struct{}

func (cmd *versionCmd) Run() error {
	fmt.Println("git-branch-stash", _version)
	return nil
}
