package main

import "github.com/Mateusinhoo/pubmed-blogger-automation/internal/cli"

func main() {
	cli.Execute()
}
