package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"krypt.co/rpcgate/client"
	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
	"krypt.co/rpcgate/common/version"
	"krypt.co/rpcgate/common/wire"
	"krypt.co/rpcgate/examples/calc"
)

func callCommand(c *cli.Context) error {
	host := c.GlobalString("host")
	port := c.GlobalInt("port")

	descriptors := descriptor.NewRegistry()
	mappers := mapper.NewRegistry(descriptors)
	overloads := descriptor.NewOverloadGroups()
	calc.RegisterClient(descriptors, overloads)

	var tlsCfg *security.TLSConfig
	if truststore := c.GlobalString("tls-truststore"); truststore != "" {
		tlsCfg = &security.TLSConfig{TruststorePath: truststore}
	}

	var target calc.Client
	err := client.NewProxy(calc.IfaceType, &target, calc.ClassName, host, port, client.Options{
		Descriptors: descriptors,
		Mappers:     mappers,
		Overloads:   overloads,
		TLS:         tlsCfg,

		ProtocolVersion: wire.V2,
	})
	if err != nil {
		return err
	}

	switch c.Args().First() {
	case "add-ints":
		a, b := parseInt32(c.String("a")), parseInt32(c.String("b"))
		sum := target.AddInts(a, b)
		color.Green("%d + %d = %d", a, b, sum)
	case "add-floats":
		a, err := strconv.ParseFloat(c.String("a"), 64)
		if err != nil {
			return err
		}
		b, err := strconv.ParseFloat(c.String("b"), 64)
		if err != nil {
			return err
		}
		sum := target.AddFloats(a, b)
		color.Green("%g + %g = %g", a, b, sum)
	case "echo":
		result := target.Echo(c.String("a"), c.String("b"), c.String("c"))
		color.Green("%s", result)
	case "divide":
		a, b := parseInt32(c.String("a")), parseInt32(c.String("b"))
		quotient, err := target.Divide(a, b)
		if err != nil {
			return err
		}
		color.Green("%d / %d = %d", a, b, quotient)
	default:
		return fmt.Errorf("unknown operation %q (want add-ints, add-floats, echo, or divide)", c.Args().First())
	}
	return nil
}

func parseInt32(s string) int32 {
	n, _ := strconv.ParseInt(s, 10, 32)
	return int32(n)
}

func main() {
	app := cli.NewApp()
	app.Name = "rpcgatectl"
	app.Usage = "demo client for the rpcgated Calc service"
	app.Version = version.Current.String()
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "host", Value: "127.0.0.1", Usage: "server host"},
		cli.IntFlag{Name: "port", Value: 7070, Usage: "server port"},
		cli.StringFlag{Name: "tls-truststore", Usage: "PEM file of CA certificates to trust the server against"},
	}
	app.Commands = []cli.Command{
		{
			Name:      "call",
			Usage:     "invoke one Calc method and print the result",
			ArgsUsage: "add-ints|add-floats|echo|divide",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "a", Usage: "first argument"},
				cli.StringFlag{Name: "b", Usage: "second argument"},
				cli.StringFlag{Name: "c", Usage: "third argument (echo only)"},
			},
			Action: callCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("rpcgatectl: %v", err)
		os.Exit(1)
	}
}
