package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/fatih/color"
	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/log"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
	"krypt.co/rpcgate/common/version"
	"krypt.co/rpcgate/examples/calc"
	"krypt.co/rpcgate/registry"
	"krypt.co/rpcgate/server"
)

func runCommand(c *cli.Context) (err error) {
	defer func() {
		if x := recover(); x != nil {
			log.Log.Error(fmt.Sprintf("run time panic: %v", x))
			log.Log.Error(string(debug.Stack()))
			panic(x)
		}
	}()

	level := logging.INFO
	if c.Bool("debug") {
		level = logging.DEBUG
	}
	log.SetupLogging(level)

	descriptors := descriptor.NewRegistry()
	mappers := mapper.NewRegistry(descriptors)
	resources := registry.NewResourceRegistry(descriptors, mappers)
	overloads := descriptor.NewOverloadGroups()

	if err := calc.RegisterServer(resources, descriptors, overloads); err != nil {
		return fmt.Errorf("registering %s: %w", calc.ClassName, err)
	}

	opts := server.Options{
		BindAddress: c.String("bind"),
		Descriptors: descriptors,
		Mappers:     mappers,
		Resources:   resources,
		Overloads:   overloads,
	}

	if keystore := c.String("tls-keystore"); keystore != "" {
		opts.TLS = &security.TLSConfig{
			KeystorePath:      keystore,
			TruststorePath:    c.String("tls-truststore"),
			RequireClientCert: c.Bool("tls-require-client-cert"),
		}
	}

	srv := server.New(opts)

	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	color.Green("%s listening on %s", version.Banner(), srv.Addr())

	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, os.Interrupt, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM)
	sig, ok := <-stopSignal
	if ok {
		log.Log.Notice("stopping with signal", sig)
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "rpcgated"
	app.Usage = "reflective RPC-over-TCP server"
	app.Version = version.Current.String()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "bind",
			Value: ":7070",
			Usage: "address to listen on",
		},
		cli.StringFlag{
			Name:  "tls-keystore",
			Usage: "PEM file containing this server's certificate and private key (TLS disabled if empty)",
		},
		cli.StringFlag{
			Name:  "tls-truststore",
			Usage: "PEM file containing trusted client CA certificates",
		},
		cli.BoolFlag{
			Name:  "tls-require-client-cert",
			Usage: "require and verify a client certificate",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug-level logging",
		},
	}
	app.Action = runCommand

	if err := app.Run(os.Args); err != nil {
		color.Red("rpcgated: %v", err)
		os.Exit(1)
	}
}
