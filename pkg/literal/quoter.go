package literal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Quoter turns a value into SQL text for a query being built.
type Quoter interface {
	Quote(v any) (string, error)
}

// NewQuoter picks the quoting strategy for a connection. With prepared
// statements spatial values become bind parameters, otherwise they are
// inlined. Non-spatial values always go to fallback, which may be nil.
func NewQuoter(prepared bool, fallback Quoter) Quoter {
	if prepared {
		return &PreparedQuoter{Fallback: fallback}
	}
	return &InlineQuoter{Fallback: fallback}
}

// InlineQuoter writes spatial values as literals into the SQL text.
type InlineQuoter struct {
	Fallback Quoter
}

func (q *InlineQuoter) Quote(v any) (string, error) {
	if IsSpatial(v) {
		return Literal(v)
	}
	return quoteFallback(q.Fallback, v)
}

// PreparedQuoter replaces spatial values with $n placeholders and collects
// their text form, which PostgreSQL parses on bind.
type PreparedQuoter struct {
	Fallback Quoter

	args []any
}

func (q *PreparedQuoter) Quote(v any) (string, error) {
	if !IsSpatial(v) {
		return quoteFallback(q.Fallback, v)
	}

	text, cast, err := spatialText(v)
	if err != nil {
		return "", err
	}
	q.args = append(q.args, text)
	return "$" + strconv.Itoa(len(q.args)) + cast, nil
}

// Args returns the bind arguments in placeholder order.
func (q *PreparedQuoter) Args() []any {
	return q.args
}

// Reset drops collected arguments so the quoter can build another statement.
func (q *PreparedQuoter) Reset() {
	q.args = q.args[:0]
}

func quoteFallback(fallback Quoter, v any) (string, error) {
	if fallback == nil {
		return "", fmt.Errorf("%w: %T", ErrUnsupportedLiteral, v)
	}
	return fallback.Quote(v)
}

// PQQuoter quotes scalar values the way lib/pq escapes them.
type PQQuoter struct{}

func (PQQuoter) Quote(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return pq.QuoteLiteral(val), nil
	case []byte:
		return `'\x` + strings.ToUpper(fmt.Sprintf("%x", val)) + `'::bytea`, nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.Itoa(val), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	case float64:
		return formatFloat(val), nil
	case time.Time:
		return pq.QuoteLiteral(val.Format(time.RFC3339Nano)), nil
	case fmt.Stringer:
		return pq.QuoteLiteral(val.String()), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedLiteral, v)
	}
}
