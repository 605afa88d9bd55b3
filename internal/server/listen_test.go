package server

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poesyliang/poesy-blog/internal/models"
)

func TestListenFallsBackWhenBusy(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	busyPort := busy.Addr().(*net.TCPAddr).Port

	ln, port, err := Listen("127.0.0.1", busyPort, []int{busyPort, 0}, quietLogger())
	require.NoError(t, err)
	defer ln.Close()

	assert.NotEqual(t, busyPort, port)
	assert.NotZero(t, port)
}

func TestListenNoPortAvailable(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	busyPort := busy.Addr().(*net.TCPAddr).Port

	_, _, err = Listen("127.0.0.1", busyPort, []int{busyPort}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no available port")
}

func TestWritePortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".api-port.json")
	info := NewPortInfo(3011, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	require.NoError(t, WritePortFile(path, info))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got models.PortInfo
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 3011, got.Port)
	assert.Equal(t, "http://localhost:3011", got.URL)
	assert.Equal(t, "2024-01-02T03:04:05.000Z", got.Timestamp)
}
