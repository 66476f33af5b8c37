package main

import (
	"fmt"

	termrender "github.com/blacktop/go-termrender"
)

// terminfo prints what the library detected about the active terminal.
func main() {
	ti := termrender.ActiveTerminal()

	fmt.Printf("size:        %d x %d cells\n", ti.Columns, ti.Rows)
	if ti.CellWidth > 0 && ti.CellHeight > 0 {
		fmt.Printf("cell:        %d x %d px (ratio %.3f)\n", ti.CellWidth, ti.CellHeight, ti.CellRatio())
	} else {
		fmt.Printf("cell:        unknown (assuming ratio %.3f)\n", ti.CellRatio())
	}
	fmt.Printf("interactive: %t\n", ti.Interactive)
	fmt.Printf("foreground:  %v\n", ti.Foreground)
	fmt.Printf("background:  %v\n", ti.Background)

	fmt.Printf("styles:      %v\n", termrender.StyleNames())
	fmt.Printf("detected:    %s\n", termrender.DetectStyle().Name())
}
