package alphavantage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFixtureProvider_ReadsCSV(t *testing.T) {
	path := writeFixture(t, `date,open,high,low,close,adj_close,volume
2024-03-04,99,101,98,100,100,1000
2024-03-05,101,103,100,102,102,1200
`)

	p := NewFixtureProvider(path)
	bars, err := p.FetchDailyBars(context.Background(), "ANY")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "2024-03-04", bars[0].Date.Format("2006-01-02"))
	assert.InDelta(t, 102.0, bars[1].AdjClose, 1e-12)
}

func TestFixtureProvider_RejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"missing column": "date,open,high,low,close,adj_close,volume\n2024-03-04,99,101,98,100,100\n",
		"bad date":       "date,open,high,low,close,adj_close,volume\n04-03-2024,99,101,98,100,100,1000\n",
		"bad number":     "date,open,high,low,close,adj_close,volume\n2024-03-04,99,101,98,100,x,1000\n",
		"no data rows":   "date,open,high,low,close,adj_close,volume\n",
		"unsorted": "date,open,high,low,close,adj_close,volume\n" +
			"2024-03-05,101,103,100,102,102,1200\n2024-03-04,99,101,98,100,100,1000\n",
	}
	for name, content := range cases {
		p := NewFixtureProvider(writeFixture(t, content))
		_, err := p.FetchDailyBars(context.Background(), "ANY")
		assert.Error(t, err, name)
	}
}

func TestFixtureProvider_MissingFile(t *testing.T) {
	p := NewFixtureProvider(filepath.Join(t.TempDir(), "nope.csv"))
	_, err := p.FetchDailyBars(context.Background(), "ANY")
	assert.Error(t, err)
}
