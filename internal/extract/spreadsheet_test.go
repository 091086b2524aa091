package extract

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/finwise-app/statement-ingest/internal/document"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Description", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"2024-03-12", "GROCERY STORE", "-45.99"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"2024-03-13", "SALARY PAYMENT", "2000.00"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestNativeSpreadsheet(t *testing.T) {
	s := NewNativeStrategy("", &stubRunner{}, nil)
	doc := document.NewSourceDocument(buildWorkbook(t), "statement.xlsx", "")

	att, err := s.Attempt(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, MethodNative, att.Method)
	assert.Equal(t, 1, att.Pages)
	assert.Contains(t, att.Text, "2024-03-12\tGROCERY STORE\t-45.99")
	assert.Contains(t, att.Text, "SALARY PAYMENT")
}

func TestSpreadsheetTextRejectsGarbage(t *testing.T) {
	_, _, err := spreadsheetText([]byte("not a workbook"))
	require.Error(t, err)
}
