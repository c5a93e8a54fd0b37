// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package replay

import (
	"errors"

	"github.com/spf13/pflag"
)

const (
	FileKey    = "file"
	VerboseKey = "verbose"
)

var errMissingFile = errors.New("missing scenario file")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(FileKey, "", "Path of the YAML or JSON scenario to replay")
	flags.Bool(VerboseKey, false, "Log VM activity to stderr")
}

type Config struct {
	File    string
	Verbose bool
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	file, err := flags.GetString(FileKey)
	if err != nil {
		return nil, err
	}
	if file == "" {
		return nil, errMissingFile
	}

	verbose, err := flags.GetBool(VerboseKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		File:    file,
		Verbose: verbose,
	}, nil
}
