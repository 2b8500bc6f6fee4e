package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"tern/internal/diag"
	"tern/internal/source"
)

// Short prints one line per diagnostic: "<path>:<line>:<col>: <sev> <CODE>: <msg>".
// Notes are not printed; line breaks inside messages are flattened.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) error {
	for _, d := range bag.Items() {
		msg := strings.ReplaceAll(d.Message, "\n", " ")
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
			location(d.Primary, fs, mode, ""), diag.SeverityLabel(d.Severity), d.Code.ID(), msg); err != nil {
			return err
		}
	}
	return nil
}
