package devices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubItemsAreInertAndNamed(t *testing.T) {
	items := []interface {
		Name() string
		OnPoll()
		OnIrq(int)
	}{
		NewPS2(), NewSerial(), NewPCI("pci0"),
		NewContext(), NewDebug(), NewMemory(), NewRandom(), NewTime(),
		NewEthernet(), NewARP(), NewIP(), NewICMP(), NewTCP(),
		NewWindow(),
	}
	names := map[string]bool{}
	for _, it := range items {
		it.OnPoll()
		it.OnIrq(1)
		names[it.Name()] = true
	}
	for _, want := range []string{
		"ps2", "serial", "pci0", "context", "debug", "memory", "random",
		"time", "ethernet", "arp", "ip", "icmp", "tcp", "window",
	} {
		assert.True(t, names[want], "missing %q", want)
	}
}

func TestFileSchemeServesKnownPathsOnly(t *testing.T) {
	f := NewFile(map[string][]byte{
		"/ui/cursor.bmp": []byte("cursor-bytes"),
	})

	res, ok := f.Open("file:///ui/cursor.bmp")
	require.True(t, ok)
	data, err := ReadAll(res)
	require.NoError(t, err)
	assert.Equal(t, "cursor-bytes", string(data))

	_, ok = f.Open("file:///ui/background.bmp")
	assert.False(t, ok, "unknown path is skipped, not an error")
}

func TestFileSchemeRejectsNonFileURL(t *testing.T) {
	f := NewFile(nil)
	_, ok := f.Open("tcp:127.0.0.1:80")
	assert.False(t, ok)
}

func TestBCDDecode(t *testing.T) {
	assert.Equal(t, int64(59), bcd(0x59))
	assert.Equal(t, int64(7), bcd(0x07))
}

func TestEpochDays(t *testing.T) {
	assert.Equal(t, int64(0), epochDays(1970, 1, 1))
	assert.Equal(t, int64(19723), epochDays(2024, 1, 1))
	assert.Equal(t, int64(19782), epochDays(2024, 2, 29))
}
