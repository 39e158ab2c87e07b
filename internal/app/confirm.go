package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prints the deletion warning and reads one line from in. Only an
// affirmative "y" or "yes" (any case) proceeds; everything else, including
// EOF, declines.
func Confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprintln(out, "WARNING: This will actually delete file versions. Are you sure? (y/n)")

	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	}
	return false
}
