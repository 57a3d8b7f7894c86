package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"reinf/internal/core"
)

// WriteCSV writes a header row plus one row per invoice. Every field is
// quoted, matching the artifact the accountant's import expects;
// encoding/csv quotes only when forced to, so rows are assembled by hand.
func WriteCSV(w io.Writer, invs []core.Invoice, keys []string) error {
	if len(invs) == 0 {
		return ErrNoRecords
	}

	bw := bufio.NewWriter(w)
	if err := writeQuotedRow(bw, Headers(keys)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, inv := range invs {
		if err := writeQuotedRow(bw, Row(inv, keys)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeQuotedRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}
