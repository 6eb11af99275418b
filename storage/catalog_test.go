package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/sqlengine/ast"
	"github.com/harrison/sqlengine/errkind"
	"github.com/harrison/sqlengine/sqlvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreateTablePersistsImmediately(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(dir)
	require.NoError(t, err)
	defer cat.Close()

	_, err = cat.CreateTable("t", []Column{{Name: "id", Dtype: sqlvalue.DtInt, Primary: true}})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "t.meta.json"))
}

func TestCatalogCreateTableDuplicateName(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(dir)
	require.NoError(t, err)
	defer cat.Close()

	_, err = cat.CreateTable("t", []Column{{Name: "id", Dtype: sqlvalue.DtInt}})
	require.NoError(t, err)

	_, err = cat.CreateTable("t", []Column{{Name: "id", Dtype: sqlvalue.DtInt}})
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.Schema))
}

func TestCatalogTableNotFound(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(dir)
	require.NoError(t, err)
	defer cat.Close()

	_, err = cat.Table("nope")
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.TableNotFound))
}

// TestRoundTripPersistence covers testable property 1: reopening a
// catalog reproduces the exact row sequence for every table.
func TestRoundTripPersistence(t *testing.T) {
	dir := t.TempDir()

	func() {
		cat, err := Open(dir)
		require.NoError(t, err)
		defer cat.Close()

		tbl, err := cat.CreateTable("t", []Column{
			{Name: "id", Dtype: sqlvalue.DtInt, Primary: true},
			{Name: "name", Dtype: sqlvalue.DtString},
		})
		require.NoError(t, err)

		_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1), "name": sqlvalue.NewString("a")})
		require.NoError(t, err)
		_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(2), "name": sqlvalue.NewString("b")})
		require.NoError(t, err)
		require.NoError(t, tbl.Persist(dir))
	}()

	cat, err := Open(dir)
	require.NoError(t, err)
	defer cat.Close()

	tbl, err := cat.Table("t")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)

	rows, err := tbl.Select([]string{"*"}, nil)
	require.NoError(t, err)
	id0, _ := rows[0].Get("id")
	id1, _ := rows[1].Get("id")
	assert.Equal(t, sqlvalue.NewInt(1), id0)
	assert.Equal(t, sqlvalue.NewInt(2), id1)
}

// TestRoundTripPersistenceFloatIntegralValue guards against FromInterface's
// JSON-float-to-int collapse (sqlvalue.FromInterface) leaking an untyped
// Int back into a FLOAT column: a FLOAT holding an integral value like 10.0
// round-trips through JSON as the bareword "10" and must be re-coerced to
// Float on load, not left as Int.
func TestRoundTripPersistenceFloatIntegralValue(t *testing.T) {
	dir := t.TempDir()

	func() {
		cat, err := Open(dir)
		require.NoError(t, err)
		defer cat.Close()

		tbl, err := cat.CreateTable("p", []Column{
			{Name: "id", Dtype: sqlvalue.DtInt, Primary: true},
			{Name: "price", Dtype: sqlvalue.DtFloat},
		})
		require.NoError(t, err)

		_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1), "price": sqlvalue.NewFloat(10.0)})
		require.NoError(t, err)
		require.NoError(t, tbl.Persist(dir))
	}()

	cat, err := Open(dir)
	require.NoError(t, err)
	defer cat.Close()

	tbl, err := cat.Table("p")
	require.NoError(t, err)

	price := tbl.Rows[0]["price"]
	assert.Equal(t, sqlvalue.Float, price.Kind())
	assert.Equal(t, sqlvalue.NewFloat(10.0), price)

	rows, err := tbl.Select([]string{"*"}, &ast.Where{Column: "price", Op: "=", Value: sqlvalue.NewInt(10)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestCatalogLoadMissingRowsDocumentIsEmptyTable(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(dir)
	require.NoError(t, err)
	_, err = cat.CreateTable("t", []Column{{Name: "id", Dtype: sqlvalue.DtInt}})
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	require.NoError(t, os.Remove(filepath.Join(dir, "t.rows.json")))

	cat2, err := Open(dir)
	require.NoError(t, err)
	defer cat2.Close()

	tbl, err := cat2.Table("t")
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}

func TestCatalogLoadCorruptUniqueConstraintIsConstraintError(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(dir)
	require.NoError(t, err)
	_, err = cat.CreateTable("t", []Column{{Name: "id", Dtype: sqlvalue.DtInt, Unique: true}})
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	corrupt := `[{"id": 1}, {"id": 1}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.rows.json"), []byte(corrupt), 0644))

	_, err = Open(dir)
	require.Error(t, err)
	assert.True(t, errkind.Is(err, errkind.Constraint))
}

func TestCatalogDropTableRemovesDocuments(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(dir)
	require.NoError(t, err)
	defer cat.Close()

	_, err = cat.CreateTable("t", []Column{{Name: "id", Dtype: sqlvalue.DtInt}})
	require.NoError(t, err)

	require.NoError(t, cat.DropTable("t"))
	assert.False(t, cat.HasTable("t"))
	assert.NoFileExists(t, filepath.Join(dir, "t.meta.json"))
	assert.NoFileExists(t, filepath.Join(dir, "t.rows.json"))
}

func TestCatalogOpenTwiceSameDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(dir)
	require.NoError(t, err)
	defer cat.Close()

	_, err = Open(dir)
	require.Error(t, err)
}

// TestAtomicWriteSurvivesTempCrash covers testable property 6: a
// temp-sibling left behind by an interrupted write never becomes a
// table's visible state, and catalog discovery ignores it.
func TestAtomicWriteSurvivesTempCrash(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(dir)
	require.NoError(t, err)

	tbl, err := cat.CreateTable("t", []Column{{Name: "id", Dtype: sqlvalue.DtInt}})
	require.NoError(t, err)
	_, err = tbl.Insert(map[string]sqlvalue.Value{"id": sqlvalue.NewInt(1)})
	require.NoError(t, err)
	require.NoError(t, tbl.Persist(dir))
	require.NoError(t, cat.Close())

	// simulate a crash mid-write: a stray temp sibling in the directory
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.rows.json.tmp-stray"), []byte("garbage"), 0644))

	cat2, err := Open(dir)
	require.NoError(t, err)
	defer cat2.Close()

	tbl2, err := cat2.Table("t")
	require.NoError(t, err)
	require.Len(t, tbl2.Rows, 1)
}
