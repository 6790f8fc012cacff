package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	f, err := New(&bytes.Buffer{}, "")
	if err != nil || f.Format != FormatTable {
		t.Errorf("expected table default, got %v, %v", f, err)
	}
}

func TestTable_Text(t *testing.T) {
	var buf bytes.Buffer
	f, _ := New(&buf, FormatTable)

	err := f.Table([]string{"TICKER", "QTY"}, [][]string{{"AAPL", "3"}, {"MSFT", "10"}})
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "------") {
		t.Errorf("expected separator line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "AAPL") || !strings.Contains(lines[2], "3") {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestTable_JSON(t *testing.T) {
	var buf bytes.Buffer
	f, _ := New(&buf, FormatJSON)

	f.Table([]string{"ticker", "quantity"}, [][]string{{"AAPL", "3"}, {"MSFT"}})

	var got []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 2 || got[0]["ticker"] != "AAPL" || got[1]["quantity"] != "" {
		t.Errorf("unexpected rows %v", got)
	}
}

func TestPrint_YAML(t *testing.T) {
	var buf bytes.Buffer
	f, _ := New(&buf, FormatYAML)

	data := map[string]any{"balance": "450", "positions": 1}
	if err := f.Print(data); err != nil {
		t.Fatalf("Print() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if got["balance"] != "450" || got["positions"] != 1 {
		t.Errorf("unexpected document %v", got)
	}
}
