package diff

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
	"github.com/bruceraup/glims-aster-gains/pkg/glims"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFile = "../glims/testdata/stars.csv"

func readTestFile(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(testFile)
	require.NoError(t, err)
	return data
}

// rewrite returns data with fn applied to every record.
func rewrite(t *testing.T, data []byte, fn func(i int, fields []string) []string) []byte {
	t.Helper()
	recs, err := glims.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	var buf bytes.Buffer
	w := glims.NewWriter(&buf)
	for i, rec := range recs {
		fields := fn(i, append([]string(nil), rec.Fields...))
		if fields == nil {
			continue
		}
		require.NoError(t, w.Write(fields))
	}
	return buf.Bytes()
}

func compare(t *testing.T, before, after []byte) (string, *Summary, error) {
	t.Helper()
	var out bytes.Buffer
	sum, err := Compare(glims.NewReader(bytes.NewReader(before)), glims.NewReader(bytes.NewReader(after)), &out, glims.DefaultSchema())
	return out.String(), sum, err
}

func TestCompare_Identical(t *testing.T) {
	data := readTestFile(t)
	out, sum, err := compare(t, data, data)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 3, sum.Rows)
	assert.Zero(t, sum.Changed)
	assert.Empty(t, sum.Transitions)
}

func TestCompare_OneBand(t *testing.T) {
	before := readTestFile(t)
	after := rewrite(t, before, func(i int, fields []string) []string {
		if i == 2 {
			fields[18] = "3"
		}
		return fields
	})

	out, sum, err := compare(t, before, after)
	require.NoError(t, err)
	assert.Equal(t, "Line 3:  V1: 4 -> 4; V2: 4 -> 3; V3: 4 -> 4\n", out)
	assert.Equal(t, 1, sum.Changed)
	assert.Equal(t, map[aster.Band]map[string]int{aster.BandVNIR2: {"4->3": 1}}, sum.Transitions)
}

func TestCompare_Summary(t *testing.T) {
	before := readTestFile(t)
	after := rewrite(t, before, func(i int, fields []string) []string {
		if i > 0 {
			fields[17], fields[19] = "1", "4"
		}
		return fields
	})

	out, sum, err := compare(t, before, after)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Line 2:  V1: 3 -> 1; V2: 3 -> 3; V3: 3 -> 4",
		"Line 3:  V1: 4 -> 1; V2: 4 -> 4; V3: 4 -> 4",
	}, strings.Split(strings.TrimSpace(out), "\n"))

	var buf bytes.Buffer
	require.NoError(t, sum.Write(&buf))
	assert.Equal(t, "Rows compared: 3\nRows changed:  2\nVNIR1: 3->1: 1, 4->1: 1\nVNIR3N: 3->4: 1\n", buf.String())
}

func TestCompare_MultilineRecord(t *testing.T) {
	before := rewrite(t, readTestFile(t), func(i int, fields []string) []string {
		if i == 1 {
			fields[1] = "two\nlines"
		}
		return fields
	})
	after := rewrite(t, before, func(i int, fields []string) []string {
		if i == 2 {
			fields[17] = "1"
		}
		return fields
	})

	out, _, err := compare(t, before, after)
	require.NoError(t, err)
	assert.Equal(t, "Line 4:  V1: 4 -> 1; V2: 4 -> 4; V3: 4 -> 4\n", out)
}

func TestCompare_RowCountMismatch(t *testing.T) {
	data := readTestFile(t)
	shorter := rewrite(t, data, func(i int, fields []string) []string {
		if i == 2 {
			return nil
		}
		if i == 1 {
			fields[17] = "1"
		}
		return fields
	})

	out, sum, err := compare(t, data, shorter)
	require.Error(t, err)
	assert.ErrorIs(t, err, aster.ErrStructure)
	assert.Equal(t, "Line 2:  V1: 3 -> 1; V2: 3 -> 3; V3: 3 -> 4\n", out, "rows before the mismatch are reported")
	assert.Equal(t, 2, sum.Rows)

	_, _, err = compare(t, shorter, data)
	assert.ErrorIs(t, err, aster.ErrStructure)
}

func TestCompare_ShortRecord(t *testing.T) {
	data := readTestFile(t)
	_, _, err := compare(t, data, []byte("a|b|c\r\nd\r\ne\r\n"))
	assert.ErrorIs(t, err, aster.ErrStructure)
}

func TestCompare_ReadError(t *testing.T) {
	data := readTestFile(t)
	_, _, err := compare(t, data, []byte("^unterminated|"))
	assert.ErrorIs(t, err, aster.ErrParse)
}
