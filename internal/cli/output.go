package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successMark = color.New(color.FgGreen, color.Bold)
	warnMark    = color.New(color.FgYellow, color.Bold)
)

// printSuccess writes a one-line confirmation such as "✔ Project deleted".
func printSuccess(w io.Writer, format string, args ...any) {
	successMark.Fprint(w, "✔ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func printWarning(w io.Writer, format string, args ...any) {
	warnMark.Fprint(w, "! ")
	fmt.Fprintf(w, format+"\n", args...)
}
