/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/cmcs/claimserver/cmd"

func main() {
	cmd.Execute()
}
