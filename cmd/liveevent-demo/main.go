// liveevent-demo runs a lifecycle scenario and a set of concurrent producers against a LiveEvent.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/iotaledger/liveevent.go/configuration"
	"github.com/iotaledger/liveevent.go/ierrors"
)

const envPrefix = "LIVEEVENT"

func main() {
	result, err := run(os.Args[1:])
	if err != nil {
		if ierrors.Is(err, flag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "liveevent-demo: %s\n", err)
		os.Exit(1)
	}

	fmt.Println(result)
}

func run(args []string) (*report, error) {
	params, err := loadParameters(args)
	if err != nil {
		return nil, err
	}

	container, err := newContainer(params)
	if err != nil {
		return nil, err
	}

	var result *report
	if err := container.Invoke(func(deps dependencies) (err error) {
		result, err = runDemo(deps)

		return err
	}); err != nil {
		return nil, ierrors.Wrap(err, "demo failed")
	}

	return result, nil
}

// loadParameters merges the defaults, the optional config file, the environment and the command line (in that order).
func loadParameters(args []string) (*Parameters, error) {
	params := &Parameters{}

	flagSet := configuration.NewUnsortedFlagSet("liveevent-demo", flag.ContinueOnError)
	configFilePath := flagSet.StringP("config", "c", "", "file path of the configuration file (json, yaml or toml)")

	config := configuration.New()
	config.BindParameters(flagSet, "logger", &params.Logger)
	config.BindParameters(flagSet, "loop", &params.Loop)
	config.BindParameters(flagSet, "demo", &params.Demo)

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	if *configFilePath != "" {
		if err := config.LoadFile(*configFilePath); err != nil {
			return nil, err
		}
	}

	// the defaults of the flags need to be known before the env vars can be loaded
	if err := config.LoadFlagSet(flagSet); err != nil {
		return nil, ierrors.Wrap(err, "unable to load flags")
	}

	if err := config.LoadEnvironmentVars(envPrefix); err != nil {
		return nil, ierrors.Wrap(err, "unable to load environment variables")
	}

	// load the flags again to overwrite env vars that were also set via command line
	if err := config.LoadFlagSet(flagSet); err != nil {
		return nil, ierrors.Wrap(err, "unable to load flags")
	}

	config.UpdateBoundParameters()

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}
