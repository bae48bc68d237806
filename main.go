/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/lumax90/pixlhub-gin/cmd"

func main() {
	cmd.Execute()
}
