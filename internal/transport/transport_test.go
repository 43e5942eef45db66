package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

func sample(load float64, status domain.FaultStatus) domain.Reading {
	ts := time.Date(2024, 3, 14, 8, 5, 9, 0, time.UTC)
	return domain.Reading{
		ID:          "r-1",
		HomeID:      "home-001",
		Timestamp:   ts.Format(domain.TimestampLayout),
		GeneratedAt: ts,
		TotalLoad:   load,
		Price:       1.72,
		Occupancy:   true,
		FaultStatus: status,
	}
}

func TestParseFaultCommand(t *testing.T) {
	cases := map[string]bool{
		"":                true,
		"fault":           true,
		" TRUE ":          true,
		"1":               true,
		`{"fault":true}`:  true,
		`{"fault":false}`: false,
		"false":           false,
		"0":               false,
		"reset":           false,
	}
	for payload, want := range cases {
		assert.Equal(t, want, ParseFaultCommand([]byte(payload)), "payload %q", payload)
	}
}

func TestDecodeReading(t *testing.T) {
	in := sample(1.93, domain.StatusFault)
	b, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := DecodeReading(b)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.True(t, out.GeneratedAt.Equal(in.GeneratedAt))
	assert.Equal(t, domain.StatusFault, out.FaultStatus)

	legacy, err := DecodeReading([]byte(`{"total_load":0.5}`))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNormal, legacy.FaultStatus)

	_, err = DecodeReading([]byte("not json"))
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []domain.Reading{sample(1.93456, domain.StatusNormal)}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "datetime,Total Load,Price,Occupancy,Fault Status", lines[0])
	assert.Equal(t, "2024-03-14 08:05:09,1.9346,1.72,1,normal", lines[1])
}

func TestCSVSink_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	sink := NewCSVSink(path)
	ctx := context.Background()

	require.NoError(t, sink.Publish(ctx, sample(1, domain.StatusNormal)))
	require.NoError(t, sink.Publish(ctx, sample(5.9, domain.StatusFault)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "datetime,"))
	assert.True(t, strings.HasSuffix(lines[2], ",fault"))
	assert.Equal(t, "csv", sink.Name())
}

func TestCSVSink_BadPath(t *testing.T) {
	sink := NewCSVSink(filepath.Join(t.TempDir(), "missing", "data.csv"))
	assert.Error(t, sink.Publish(context.Background(), sample(1, domain.StatusNormal)))
}

func TestKafkaMessageKeyedByHome(t *testing.T) {
	r := sample(2.2, domain.StatusNormal)
	msg, err := kafkaMessage(r)
	require.NoError(t, err)

	assert.Equal(t, []byte("home-001"), msg.Key)
	assert.Equal(t, r.GeneratedAt, msg.Time)
	decoded, err := DecodeReading(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, r.TotalLoad, decoded.TotalLoad)
}
