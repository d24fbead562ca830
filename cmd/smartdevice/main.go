package main

import (
	"github.com/alecthomas/kong"

	"github.com/fr-isen/smartdevice-tool/internal/cli"
)

func main() {
	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("smartdevice"),
		kong.Description("Scan for BLE peripherals and drive the LED of an STM32 board."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	ctx.FatalIfErrorf(ctx.Run(&c))
}
