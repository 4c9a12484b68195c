package store

import (
	"fmt"
	"strings"
)

// setBuilder accumulates "col = $n" assignments for a partial UPDATE so
// that only the columns a patch provides are written.
type setBuilder struct {
	cols []string
	args []any
}

func (b *setBuilder) add(col string, val any) {
	b.args = append(b.args, val)
	b.cols = append(b.cols, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

// raw appends an assignment that takes no argument, e.g. "updated_at = NOW()".
func (b *setBuilder) raw(expr string) {
	b.cols = append(b.cols, expr)
}

func (b *setBuilder) empty() bool {
	return len(b.args) == 0
}

// build returns the SET clause and the argument list with id appended
// last, plus the placeholder for id.
func (b *setBuilder) build(id any) (set string, args []any, idPlaceholder string) {
	args = append(append([]any{}, b.args...), id)
	return strings.Join(b.cols, ", "), args, fmt.Sprintf("$%d", len(args))
}
