package graph

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Parameter is one key/value pair of an outgoing request. Lists of
// parameters keep their order and duplicate names reach the wire as given;
// deduplication is the caller's responsibility.
type Parameter struct {
	Name  string
	Value string
}

// With builds a Parameter. Strings are sent verbatim, string slices are
// comma-joined, times are sent as unix seconds and anything else that is
// not a scalar is JSON-encoded.
func With(name string, value interface{}) Parameter {
	return Parameter{Name: name, Value: formatValue(value)}
}

// WithFields builds the "fields" parameter that restricts a response to the given keys.
func WithFields(fields ...string) Parameter {
	return Parameter{Name: "fields", Value: strings.Join(fields, ",")}
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return strconv.FormatInt(v.Unix(), 10)
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// encodeParameters form-encodes params preserving order and duplicates,
// which url.Values.Encode would not.
func encodeParameters(params []Parameter) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// appendQuery joins base and the encoded parameters.
func appendQuery(base string, params []Parameter) string {
	if len(params) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + encodeParameters(params)
}
