package carteira

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
)

// this file contains functions to handle the upload format.

// DefaultOperationsPath is where the operations sit in an uploaded JSON object.
const DefaultOperationsPath = "$.operations"

// Record is one uploaded record. Err is set when the record could not be
// decoded into an operation; it is reported against the record index.
type Record struct {
	Operation Operation
	Err       error
}

// ImportOperations reads upload records from r.
//
// A record is a json object with the properties 'date' (ISO date), 'ticker',
// 'operation' ("buy" or "sell"), 'quantity', 'price' and the optional 'fees'.
//
// The input is either a JSON array of records, a stream of records (JSONL), a
// single record, or a JSON object whose records are found at the JSONPath
// 'path' (DefaultOperationsPath when empty), which is how broker exports are
// usually shaped.
func ImportOperations(r io.Reader, path string) ([]Record, error) {
	if path == "" {
		path = DefaultOperationsPath
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var values []any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot parse upload: %w", err)
		}
		values = append(values, v)
	}

	items := values
	if len(values) == 1 {
		switch v := values[0].(type) {
		case []any:
			items = v
		case map[string]any:
			if _, ok := v["ticker"]; ok {
				break
			}
			jval, err := jsonpath.Get(path, v)
			if err != nil {
				return nil, fmt.Errorf("cannot find operations at %q: %w", path, err)
			}
			list, ok := jval.([]any)
			if !ok {
				return nil, fmt.Errorf("operations at %q: want a list, got %T", path, jval)
			}
			items = list
		default:
			return nil, fmt.Errorf("cannot parse upload: want records, got %T", v)
		}
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		raw, err := json.Marshal(item)
		if err == nil {
			err = json.Unmarshal(raw, &rec.Operation)
		}
		if err != nil {
			rec.Err = &ValidationError{Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ExportOperations writes the operations as a JSON array of records, the
// format ImportOperations reads back.
func ExportOperations(w io.Writer, ops []Operation) error {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, op := range ops {
		data, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("failed to marshal operation: %w", err)
		}
		buf.WriteString("  ")
		buf.Write(data)
		if i < len(ops)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}
