package results

import (
	"fmt"
	"io"

	"github.com/pyrochlore-sim/pyrochlore-sim/sim"
)

// TableWriter prints Results as fixed-width rows. The header is written
// before the first row.
type TableWriter struct {
	w           io.Writer
	wroteHeader bool
}

// NewTableWriter creates a TableWriter on w.
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{w: w}
}

// Write appends one row for r.
func (t *TableWriter) Write(r sim.Result) error {
	if !t.wroteHeader {
		if _, err := fmt.Fprintf(t.w, "%-12s | %14s | %14s | %16s\n",
			"temperature", "energy", "magnetism", "heat_capacity"); err != nil {
			return err
		}
		t.wroteHeader = true
	}
	_, err := fmt.Fprintf(t.w, "%-12.4f | %14.6f | %14.6f | %16.6f\n",
		r.Temperature, r.AverageEnergy, r.AverageMagnetism, r.AverageHeatCapacity)
	return err
}
