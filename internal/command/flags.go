// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/archubbuck/cli-ops-sub001/internal/output"
)

// NewGlobalFlags returns the flags shared by every leaf command: output
// format and title visibility, each overridable per namespace in the
// config file.
func NewGlobalFlags(ns, cfgSource string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(cfgSource)),
				yaml.YAML("output", altsrc.StringSourcer(cfgSource)),
			),
			Value:     output.FormatText,
			Validator: OutputValidator,
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(cfgSource)),
				yaml.YAML("titles", altsrc.StringSourcer(cfgSource)),
			),
			Value: false,
		},
	}
}

// OutputValidator rejects unknown --output values at parse time.
func OutputValidator(value string) error {
	if !output.ValidFormat(value) {
		return fmt.Errorf("unsupported output format %q", value)
	}
	return nil
}

// StateValidator constrains --state to the values the GitHub API accepts.
func StateValidator(value string) error {
	switch value {
	case "open", "closed", "all":
		return nil
	}
	return fmt.Errorf("unsupported state %q (want open, closed or all)", value)
}
