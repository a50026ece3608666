package export

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"crmbot/crm/models"
)

func TestOrdersWorkbook(t *testing.T) {
	created := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	path, err := Orders([]models.OrderWithClient{
		{ID: 7, ClientName: "Ali", ClientPhone: "+998901234567", ClientAddress: "Tashkent",
			Product: "Anor", Amount: 5, CreatedAt: created},
	})
	require.NoError(t, err)
	defer os.Remove(path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"#", "Client", "Phone", "Address", "Product", "Amount", "Date"}, rows[0])
	assert.Equal(t, []string{"1", "Ali", "+998901234567", "Tashkent", "Anor", "5", "2026-03-15 10:30"}, rows[1])
}

func TestOrdersEmptyTableStillHasHeader(t *testing.T) {
	path, err := Orders(nil)
	require.NoError(t, err)
	defer os.Remove(path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
