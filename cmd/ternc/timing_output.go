package main

import (
	"encoding/json"
	"fmt"
	"io"

	"tern/internal/observ"
)

// printTimings writes the phases of timer: a table, or one JSON object when
// the diagnostics themselves go out as JSON. Nothing when timing is off.
func printTimings(out io.Writer, timer *observ.Timer, format string) {
	if out == nil || timer == nil {
		return
	}
	var err error
	if format == "json" {
		err = json.NewEncoder(out).Encode(timer.Report())
	} else {
		_, err = fmt.Fprint(out, timer.Summary())
	}
	if err != nil {
		panic(err)
	}
}
