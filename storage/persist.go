package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/sqlengine/errkind"
	"github.com/harrison/sqlengine/internal/filelock"
	"github.com/harrison/sqlengine/sqlvalue"
)

// metaSuffix and rowsSuffix name the two companion documents a table
// persists to, per spec §6.
const (
	metaSuffix = ".meta.json"
	rowsSuffix = ".rows.json"
)

// schemaDoc is the on-disk shape of a T.meta.json document.
type schemaDoc struct {
	Name    string      `json:"name"`
	Columns []columnDoc `json:"columns"`
}

func metaPath(dir, name string) string { return filepath.Join(dir, name+metaSuffix) }
func rowsPath(dir, name string) string { return filepath.Join(dir, name+rowsSuffix) }

// Persist atomically writes t's schema and rows documents into dir. Both
// writes go through filelock.AtomicWrite (temp-sibling then rename), the
// durability contract spec §4.3/§6 require: a crash mid-write leaves
// either the previous committed document or the new one, never a torn
// file.
func (t *Table) Persist(dir string) error {
	doc := schemaDoc{Name: t.Name, Columns: make([]columnDoc, len(t.Columns))}
	for i, c := range t.Columns {
		doc.Columns[i] = columnDoc{Name: c.Name, Dtype: c.Dtype.String(), Primary: c.Primary, Unique: c.Unique}
	}
	metaBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errkind.Wrap(errkind.Schema, "marshal schema document", err)
	}
	if err := filelock.AtomicWrite(metaPath(dir, t.Name), metaBytes); err != nil {
		return errkind.Wrap(errkind.Schema, fmt.Sprintf("persist schema for table %q", t.Name), err)
	}

	rowDocs := make([]map[string]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		obj := make(map[string]interface{}, len(t.Columns))
		for _, c := range t.Columns {
			obj[c.Name] = row[c.Name].Interface()
		}
		rowDocs[i] = obj
	}
	rowBytes, err := json.MarshalIndent(rowDocs, "", "  ")
	if err != nil {
		return errkind.Wrap(errkind.Schema, "marshal rows document", err)
	}
	if err := filelock.AtomicWrite(rowsPath(dir, t.Name), rowBytes); err != nil {
		return errkind.Wrap(errkind.Schema, fmt.Sprintf("persist rows for table %q", t.Name), err)
	}

	t.MarkClean()
	return nil
}

// deleteDocuments removes both of t's on-disk documents. A missing file is not an
// error: DROP TABLE is best-effort on an already-partial persistence
// state.
func (t *Table) deleteDocuments(dir string) error {
	for _, p := range []string{metaPath(dir, t.Name), rowsPath(dir, t.Name)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return errkind.Wrap(errkind.Schema, fmt.Sprintf("remove %s", p), err)
		}
	}
	return nil
}

// loadTable reads a schema document and its companion rows document (if
// present) from dir and reconstructs a Table, rebuilding indexes.
func loadTable(dir, metaFile string) (*Table, error) {
	name := metaFile[:len(metaFile)-len(metaSuffix)]

	raw, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, errkind.Wrap(errkind.Schema, fmt.Sprintf("read schema document %s", metaFile), err)
	}
	var doc schemaDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errkind.Wrap(errkind.Schema, fmt.Sprintf("decode schema document %s", metaFile), err)
	}

	columns := make([]Column, len(doc.Columns))
	for i, cd := range doc.Columns {
		dtype, ok := sqlvalue.ParseDtype(cd.Dtype)
		if !ok {
			return nil, errkind.Newf(errkind.Schema, "table %q: unsupported dtype %q for column %q", doc.Name, cd.Dtype, cd.Name)
		}
		columns[i] = Column{Name: cd.Name, Dtype: dtype, Primary: cd.Primary, Unique: cd.Unique}
	}

	t, err := NewTable(doc.Name, columns)
	if err != nil {
		return nil, err
	}

	rowsFile := rowsPath(dir, name)
	rowsRaw, err := os.ReadFile(rowsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, errkind.Wrap(errkind.Schema, fmt.Sprintf("read rows document for table %q", name), err)
	}

	var rowDocs []map[string]interface{}
	if err := json.Unmarshal(rowsRaw, &rowDocs); err != nil {
		return nil, errkind.Wrap(errkind.Schema, fmt.Sprintf("decode rows document for table %q", name), err)
	}

	t.Rows = make([]Row, len(rowDocs))
	for i, obj := range rowDocs {
		row := make(Row, len(t.Columns))
		for _, c := range t.Columns {
			coerced, err := sqlvalue.Coerce(sqlvalue.FromInterface(obj[c.Name]), c.Dtype)
			if err != nil {
				return nil, errkind.Wrap(errkind.Schema, fmt.Sprintf("table %q: decode column %q", name, c.Name), err)
			}
			row[c.Name] = coerced
		}
		t.Rows[i] = row
	}

	if err := t.RebuildIndexes(); err != nil {
		return nil, err
	}
	return t, nil
}
