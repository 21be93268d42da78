package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileReaderCSV(t *testing.T) {
	path := writeFile(t, "launches.csv", "\ufeff,Flight Number, Launch Site ,class\n"+
		"0,1,CCAFS LC-40,0\n"+
		"\n"+
		"1,2,VAFB SLC-4E\n")

	table, err := NewFileReader(path).Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Flight Number", "Launch Site", "class"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "CCAFS LC-40", table.Rows[0]["Launch Site"])
	assert.Equal(t, "0", table.Rows[0]["class"])
	_, hasClass := table.Rows[1]["class"]
	assert.False(t, hasClass, "short rows leave trailing columns unset")
	assert.True(t, table.HasColumn("Launch Site"))
}

func TestFileReaderMissingFile(t *testing.T) {
	_, err := NewFileReader(filepath.Join(t.TempDir(), "missing.csv")).Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFileReaderEmptyCSV(t *testing.T) {
	path := writeFile(t, "empty.csv", "")
	_, err := NewFileReader(path).Read(context.Background())
	require.Error(t, err)
}

func TestFileReaderExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Launch Site", "Payload Mass (kg)", "class", "Booster Version Category"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"KSC LC-39A", 2490, 1, "FT"}))
	path := filepath.Join(t.TempDir(), "launches.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	reader := NewReader(path)
	assert.Contains(t, reader.Describe(), "xlsx")

	table, err := reader.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "KSC LC-39A", table.Rows[0]["Launch Site"])
	assert.Equal(t, "2490", table.Rows[0]["Payload Mass (kg)"])
	assert.Equal(t, "FT", table.Rows[0]["Booster Version Category"])
}

func TestParseSQLSource(t *testing.T) {
	tests := []struct {
		input  string
		want   SQLSource
		wantOK bool
	}{
		{"postgres://u:p@db/launches", SQLSource{Driver: "postgres", DSN: "postgres://u:p@db/launches", Table: DefaultLaunchTable}, true},
		{"postgresql://db/x#launch_records", SQLSource{Driver: "postgres", DSN: "postgresql://db/x", Table: "launch_records"}, true},
		{"sqlite3:/tmp/launches.db", SQLSource{Driver: "sqlite3", DSN: "/tmp/launches.db", Table: DefaultLaunchTable}, true},
		{"spacex_launch_dash.csv", SQLSource{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseSQLSource(tt.input)
		assert.Equal(t, tt.wantOK, ok, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestSQLReaderSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "launches.db")
	db, err := sqlx.Connect("sqlite3", dbPath)
	require.NoError(t, err)
	db.MustExec(`CREATE TABLE spacex_launches (
		launch_site TEXT, payload_mass_kg REAL, class INTEGER, booster_version_category TEXT)`)
	db.MustExec(`INSERT INTO spacex_launches VALUES ('CCAFS LC-40', 525.5, 0, 'v1.0'), ('KSC LC-39A', 3600, 1, 'FT')`)
	require.NoError(t, db.Close())

	reader := NewReader("sqlite3:" + dbPath)
	assert.Equal(t, "sqlite3 table spacex_launches", reader.Describe())

	table, err := reader.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Launch Site", "Payload Mass (kg)", "class", "Booster Version Category"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "525.5", table.Rows[0]["Payload Mass (kg)"])
	assert.Equal(t, "1", table.Rows[1]["class"])
}

func TestSQLReaderRejectsBadTableName(t *testing.T) {
	_, err := NewSQLReader(SQLSource{Driver: "sqlite3", DSN: ":memory:", Table: "x; DROP TABLE y"}).Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}
