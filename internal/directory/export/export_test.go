package export

import (
	"bytes"
	"testing"

	"github.com/gartstein/directory/internal/directory/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func page() []models.Company {
	return []models.Company{
		{ID: 1, Name: "Acme", Industry: "Tech", Location: "Austin, Texas", Employees: 10, Revenue: 1000, Founded: 2000},
		{ID: 12, Name: `Say "Hi" Inc`, Industry: "Food", Location: "Chicago", Employees: 3, Revenue: 0, Founded: 1999},
	}
}

func TestCSV(t *testing.T) {
	want := "ID,Company,Industry,Location,Employees,Revenue,Founded\n" +
		`"1","Acme","Tech","Austin, Texas","10","1000","2000"` + "\n" +
		`"12","Say ""Hi"" Inc","Food","Chicago","3","0","1999"`

	assert.Equal(t, want, CSV(page()))
}

func TestCSV_empty(t *testing.T) {
	assert.Equal(t, "ID,Company,Industry,Location,Employees,Revenue,Founded", CSV(nil))
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(page())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"1", "Acme", "Tech", "Austin, Texas", "10", "1000", "2000"}, rows[1])
	assert.Equal(t, `Say "Hi" Inc`, rows[2][1])

	panes, err := f.GetPanes(SheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
}

func TestXLSX_headerOnly(t *testing.T) {
	data, err := XLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
