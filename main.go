package main

import (
	"fmt"
	"os"

	"fjacquet/statement-scanner/cmd/root"
	"fjacquet/statement-scanner/cmd/rules"
	"fjacquet/statement-scanner/cmd/scan"
	"fjacquet/statement-scanner/cmd/serve"
	"fjacquet/statement-scanner/cmd/settings"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(scan.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(settings.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
