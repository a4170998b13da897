package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/apim-extensions/s3artifacts/cli/commands"
	"github.com/apim-extensions/s3artifacts/synclog"

	"github.com/spf13/pflag"
)

func main() {
	flagSet := pflag.NewFlagSet("gwartifacts", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	verbose := flagSet.BoolP("verbose", "v", false, "enable verbose logging")
	logLevel := flagSet.String("log-level", "info", "log level: debug, info, warning or error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printUsage(flagSet)
			return
		}
		synclog.Fatalf("Error parsing args: %+v", err)
	}

	level, err := synclog.ParseLevel(*logLevel)
	if err != nil {
		synclog.Fatalf("%+v", err)
	}
	synclog.SetLogLevel(level)
	if *verbose {
		synclog.SetLogLevel(synclog.Debug)
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		synclog.Errorf("No command specified")
		printUsage(flagSet)
		os.Exit(1)
	}

	commandName := rest[0]
	command, ok := commands.Known[commandName]
	if !ok {
		synclog.Errorf("Unknown command %s", commandName)
		printUsage(flagSet)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := command.Exec(ctx, rest[1:]...); err != nil {
		synclog.Fatalf("Error executing command %s: %+v", commandName, err)
	}
}

func printUsage(flagSet *pflag.FlagSet) {
	synclog.Infof("Usage: %s [options] [command] [command options]", os.Args[0])
	synclog.Infof("Valid commands are:")
	for _, commandName := range commands.Names() {
		synclog.Infof("\t%s\t%s", commandName, commands.Known[commandName].Describe())
	}
	synclog.Infof("Valid options are:")
	synclog.Infof("%s", flagSet.FlagUsages())
}
