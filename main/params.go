// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"flag"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	versionKey = "version"
)

func buildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("datumvm", flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints version and quits")

	return fs
}

// getViper returns the viper environment for the plugin binary
func getViper() (*viper.Viper, error) {
	v := viper.New()

	fs := buildFlagSet()
	pflag.CommandLine.AddGoFlagSet(fs)
	pflag.Parse()
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	return v, nil
}

// PrintVersion reports whether the binary was asked to print its version and
// exit
func PrintVersion() (bool, error) {
	v, err := getViper()
	if err != nil {
		return false, err
	}

	return v.GetBool(versionKey), nil
}
