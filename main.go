// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/archubbuck/cli-ops-sub001/internal/command"
	"github.com/archubbuck/cli-ops-sub001/internal/exitcode"
	"github.com/archubbuck/cli-ops-sub001/internal/history"
	mylog "github.com/archubbuck/cli-ops-sub001/internal/log"
	"github.com/archubbuck/cli-ops-sub001/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return exitcode.OK
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitcode.InitFailure
	}

	code := exitcode.OK
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = exitcode.RunFailure
	}

	recordHistory(app, args, code)

	return code
}

// recordHistory appends this invocation to the history log. Best-effort;
// a history failure never changes the exit code.
func recordHistory(app *cli.Command, args []string, code int) {
	m := command.GetMeta(app)
	if m.History == nil || len(args) < 2 {
		return
	}

	r := history.Record{
		Time:     time.Now(),
		Command:  args[1],
		Args:     args[2:],
		ExitCode: code,
	}
	if err := m.History.Append(r); err != nil {
		log.WithError(err).Debug("failed to record history")
	}
}
