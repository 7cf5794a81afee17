package dbhelper

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// updateBuilder assembles an UPDATE ... SET clause from explicitly named
// columns. Column names are compile-time literals at every call site; values
// always travel as query parameters.
type updateBuilder struct {
	cols []string
	args []interface{}
}

func (b *updateBuilder) set(col string, value interface{}) {
	b.args = append(b.args, value)
	b.cols = append(b.cols, fmt.Sprintf("%s=$%d", col, len(b.args)))
}

func (b *updateBuilder) empty() bool {
	return len(b.cols) == 0
}

// build returns the full statement with the row id appended as the last
// parameter.
func (b *updateBuilder) build(table string, id uuid.UUID, returning string) (string, []interface{}) {
	args := append(b.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id=$%d RETURNING %s",
		table, strings.Join(b.cols, ", "), len(args), returning)
	return query, args
}

// uuidArray adapts a uuid slice for `= ANY($1)` set filtering.
func uuidArray(ids []uuid.UUID) pq.StringArray {
	arr := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, id.String())
	}
	return arr
}
