package csvcodec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"boqtrack/internal/csvcodec"
	"boqtrack/internal/schema"
)

func importSchema() schema.Schema {
	return schema.Schema{
		IDField: "id",
		Fields: []schema.Field{
			{Name: "site_id", Kind: schema.String, Required: true},
			{Name: "item_code", Kind: schema.String, Required: true},
			{Name: "description", Kind: schema.String},
			{Name: "qty", Kind: schema.Int, Required: true},
		},
	}
}

func TestDecode_QuotedCommasAndEmbeddedQuotes(t *testing.T) {
	in := `item_code,description
ANT-100,"bracket, galvanized"
ANT-101,"the ""big"" mast"
`
	table, err := csvcodec.Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{"item_code", "description"}, table.Header)
	require.Equal(t, "bracket, galvanized", table.Rows[0][1])
	require.Equal(t, `the "big" mast`, table.Rows[1][1])
}

func TestEncode_RoundTripsQuoting(t *testing.T) {
	table := csvcodec.Table{
		Header: []string{"item_code", "description"},
		Rows:   [][]string{{"ANT-100", `has "quotes", and commas`}},
	}
	var buf bytes.Buffer
	require.NoError(t, csvcodec.Encode(&buf, table))

	decoded, err := csvcodec.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, table.Rows, decoded.Rows)
}

func TestMatchHeader_NormalizesNames(t *testing.T) {
	cols, err := csvcodec.MatchHeader([]string{"Site ID", "Item-Code", "QTY", "ignored"}, importSchema())
	require.NoError(t, err)
	require.Equal(t, map[int]string{0: "site_id", 1: "item_code", 2: "qty"}, cols)
}

func TestMatchHeader_MissingRequiredColumn(t *testing.T) {
	_, err := csvcodec.MatchHeader([]string{"site_id", "item_code"}, importSchema())
	require.ErrorContains(t, err, "qty")
}

func TestMatchHeader_DuplicateColumn(t *testing.T) {
	_, err := csvcodec.MatchHeader([]string{"site_id", "item_code", "qty", "Qty"}, importSchema())
	require.ErrorContains(t, err, "duplicate")
}

func TestDecodeRecords_CollectsRowErrors(t *testing.T) {
	in := `site_id,item_code,qty
S-001,ANT-100,5
S-002,ANT-101,not-a-number
S-003,,2
S-004,ANT-103,7
`
	records, rowErrs, err := csvcodec.DecodeRecords(strings.NewReader(in), importSchema())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, int64(5), records[0]["qty"])
	require.Equal(t, int64(7), records[1]["qty"])

	require.Len(t, rowErrs, 2)
	require.Equal(t, 3, rowErrs[0].Line)
	require.ErrorContains(t, rowErrs[0].Err, "qty")
	require.Equal(t, 4, rowErrs[1].Line)
	require.ErrorContains(t, rowErrs[1].Err, "item_code")
}

func TestDecode_Empty(t *testing.T) {
	_, err := csvcodec.Decode(strings.NewReader(""))
	require.Error(t, err)
}
