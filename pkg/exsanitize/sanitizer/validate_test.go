package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
)

func boundsOf(entries ...models.BoundEntry) *models.BoundMap {
	m := models.NewBoundMap()
	for _, e := range entries {
		m.Set(e.Parameter, e.Bound)
	}
	return m
}

func entry(param string, lo, hi float64) models.BoundEntry {
	return models.BoundEntry{Parameter: param, Bound: models.Bound{Min: lo, Max: hi}}
}

func TestSanitize_EndToEnd(t *testing.T) {
	data := models.NewTable("id", "temp")
	data.AppendRow(models.Int(1), models.Int(50))
	data.AppendRow(models.Int(2), models.Int(150))
	data.AppendRow(models.Int(3), models.Null())

	ranges := rangeTable([]models.Value{models.Text("temp"), models.Int(0), models.Int(100)})

	bounds, err := Normalize(ranges)
	require.NoError(t, err)

	clean, bad := Validate(data, bounds)

	assert.Equal(t, []string{"id", "temp"}, clean.Columns)
	require.Equal(t, 1, clean.Len())
	assert.Equal(t, []models.Value{models.Int(1), models.Int(50)}, clean.Row(0))

	assert.Equal(t, []string{"id", "temp", "issues"}, bad.Columns)
	require.Equal(t, 2, bad.Len())
	assert.Equal(t, []models.Value{
		models.Int(2), models.Int(150), models.Text("temp: 150 outside [0.0, 100.0]"),
	}, bad.Row(0))
	assert.Equal(t, []models.Value{
		models.Int(3), models.Null(), models.Text("temp: missing value"),
	}, bad.Row(1))
}

func TestValidate_IssueShapes(t *testing.T) {
	data := models.NewTable("a", "b", "c")
	data.AppendRow(models.Text("x"), models.Bool(true), models.Float(2.75))

	bounds := boundsOf(
		entry("a", 0, 1),
		entry("b", 0, 1),
		entry("c", -1.5, 2.5),
		entry("d", 0, 1),
	)

	clean, bad := Validate(data, bounds)
	assert.Equal(t, 0, clean.Len())
	require.Equal(t, 1, bad.Len())

	issues := bad.Records[0].Get(models.IssuesColumn)
	assert.Equal(t,
		"a: non-numeric; b: non-numeric; c: 2.75 outside [-1.5, 2.5]; d: column missing",
		issues.String())
}

func TestValidate_TextDigitsAreNonNumeric(t *testing.T) {
	data := models.NewTable("p")
	data.AppendRow(models.Text("42"))
	data.AppendRow(models.Int(42))

	clean, bad := Validate(data, boundsOf(entry("p", 0, 100)))

	require.Equal(t, 1, clean.Len())
	assert.Equal(t, []models.Value{models.Int(42)}, clean.Row(0))
	require.Equal(t, 1, bad.Len())
	assert.Equal(t, []models.Value{models.Text("42"), models.Text("p: non-numeric")}, bad.Row(0))
}

func TestValidate_InclusiveBounds(t *testing.T) {
	data := models.NewTable("v")
	for _, v := range []models.Value{models.Int(0), models.Int(10), models.Float(0.0), models.Float(10.0), models.Int(5)} {
		data.AppendRow(v)
	}

	clean, bad := Validate(data, boundsOf(entry("v", 0, 10)))
	assert.Equal(t, 5, clean.Len())
	assert.Equal(t, 0, bad.Len())
}

func TestValidate_ColumnMissingUsesDeclaredColumns(t *testing.T) {
	data := models.NewTable("id", "temp")
	// record lacks the temp key but the table declares it
	data.Append(models.Record{"id": models.Int(1)})

	_, bad := Validate(data, boundsOf(entry("temp", 0, 1), entry("ph", 0, 14)))
	require.Equal(t, 1, bad.Len())
	assert.Equal(t, "temp: missing value; ph: column missing",
		bad.Records[0].Get(models.IssuesColumn).String())
}

func TestValidate_EmptyBoundsAllClean(t *testing.T) {
	data := models.NewTable("x")
	data.AppendRow(models.Text("anything"))
	data.AppendRow(models.Null())

	clean, bad := Validate(data, models.NewBoundMap())
	assert.True(t, clean.Equal(data))
	assert.Equal(t, 0, bad.Len())
	assert.Equal(t, []string{"x", "issues"}, bad.Columns)
}

func TestValidate_EmptyAndNilInput(t *testing.T) {
	clean, bad := Validate(models.NewTable("a"), boundsOf(entry("a", 0, 1)))
	assert.Equal(t, 0, clean.Len())
	assert.Equal(t, 0, bad.Len())
	assert.Equal(t, []string{"a"}, clean.Columns)

	clean, bad = Validate(nil, nil)
	require.NotNil(t, clean)
	require.NotNil(t, bad)
	assert.Empty(t, clean.Columns)
	assert.Equal(t, []string{"issues"}, bad.Columns)
}

func TestValidate_ExistingIssuesColumnOverwritten(t *testing.T) {
	data := models.NewTable("issues", "v")
	data.AppendRow(models.Text("old"), models.Int(99))

	_, bad := Validate(data, boundsOf(entry("v", 0, 1)))
	assert.Equal(t, []string{"issues", "v"}, bad.Columns)
	assert.Equal(t, "v: 99 outside [0.0, 1.0]", bad.Records[0].Get("issues").String())
	assert.Equal(t, "old", data.Records[0].Get("issues").String(), "input record must not be mutated")
}

func TestValidate_PartitionPreservesOrder(t *testing.T) {
	data := models.NewTable("id", "v")
	values := []int64{5, -1, 3, 42, 0, 7, 11}
	for i, v := range values {
		data.AppendRow(models.Int(int64(i)), models.Int(v))
	}

	clean, bad := Validate(data, boundsOf(entry("v", 0, 10)))
	assert.Equal(t, data.Len(), clean.Len()+bad.Len())

	ids := func(tbl *models.Table) []int64 {
		var out []int64
		for _, r := range tbl.Records {
			id, _ := r.Get("id").Int64()
			out = append(out, id)
		}
		return out
	}
	assert.Equal(t, []int64{0, 2, 4, 5}, ids(clean))
	assert.Equal(t, []int64{1, 3, 6}, ids(bad))

	// merging the partitions back by id reconstructs the input
	merged := make(map[int64]models.Record)
	for _, r := range clean.Records {
		id, _ := r.Get("id").Int64()
		merged[id] = r
	}
	for _, r := range bad.Records {
		id, _ := r.Get("id").Int64()
		_, dup := merged[id]
		require.False(t, dup, "row %d in both partitions", id)
		stripped := r.Clone()
		delete(stripped, models.IssuesColumn)
		merged[id] = stripped
	}
	for i, r := range data.Records {
		assert.Equal(t, r, merged[int64(i)])
	}
}

func TestValidate_Idempotent(t *testing.T) {
	data := models.NewTable("v", "w")
	data.AppendRow(models.Float(1.25), models.Text("n/a"))
	data.AppendRow(models.Int(-4), models.Int(3))
	bounds := boundsOf(entry("v", 0, 2), entry("w", 0, 5))

	c1, b1 := Validate(data, bounds)
	c2, b2 := Validate(data, bounds)
	assert.True(t, c1.Equal(c2))
	assert.True(t, b1.Equal(b2))
}

func TestValidateRecord(t *testing.T) {
	data := models.NewTable("v")
	issues := ValidateRecord(data, models.Record{"v": models.Float(1e17)}, boundsOf(entry("v", 0, 1)))
	require.Len(t, issues, 1)
	assert.Equal(t, IssueOutOfRange, issues[0].Kind)
	assert.Equal(t, "v: 1e+17 outside [0.0, 1.0]", issues[0].String())
}
