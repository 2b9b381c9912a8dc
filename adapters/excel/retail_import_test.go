package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statlab/domain/core"
	"statlab/internal"
)

func TestReadRetailSales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "us_retail_sales.csv")
	content := "sales_month,naics_code,kind_of_business,reason_for_null,sales\n" +
		"1992-01-01,4451,Grocery stores,,\"27,306\"\n" +
		"1992-02-01,4451,Grocery stores,,26255\n" +
		"1992-01-01,4482,Shoe stores,Supressed,\n" +
		"1/1/1993,4482,Shoe stores,,(S)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reader := NewDataReader(DefaultReaderConfig(), internal.NewLogger(internal.LogLevelError))
	records, err := reader.ReadRetailSales(path)
	require.NoError(t, err)
	require.Len(t, records, 4)

	require.NotNil(t, records[0].Sales)
	assert.Equal(t, int64(27306), *records[0].Sales)
	assert.Equal(t, "Grocery stores", records[0].Business)
	assert.Equal(t, "4451", records[0].NAICSCode)

	assert.Nil(t, records[2].Sales)
	assert.Equal(t, "Supressed", records[2].ReasonForNull)

	assert.Equal(t, "1993-01-01", records[3].Month)
	assert.Nil(t, records[3].Sales)
	assert.Equal(t, "(S)", records[3].ReasonForNull)
}

func TestReadRetailSales_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("month,sales\n1992-01-01,1\n"), 0o644))

	reader := NewDataReader(DefaultReaderConfig(), nil)
	_, err := reader.ReadRetailSales(path)
	assert.True(t, core.IsInvalidInputError(err))
}
