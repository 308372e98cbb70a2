// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshallBytes32(t *testing.T) {
	originalHex := `"0x00000000000000000000000000000000000000000000000000006d6173746572"`

	var unmarshaledValue Bytes32
	err := unmarshaledValue.UnmarshalJSON([]byte(originalHex))
	assert.NoError(t, err)

	err = json.Unmarshal([]byte(originalHex), &unmarshaledValue)
	assert.NoError(t, err)

	directMarshallJson, err := unmarshaledValue.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(directMarshallJson))

	marshalVal, err := json.Marshal(unmarshaledValue)
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(marshalVal))
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"1x7567d83b7b8d80addcb281a71d54fc7b3364ffed", true},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ff", true},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			addr, err := ParseAddress(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("owner"))

	data, err := json.Marshal(&addr)
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)
	assert.False(t, decoded.IsZero())
	assert.True(t, Address{}.IsZero())
}

func TestBlake2b(t *testing.T) {
	singleHash := Blake2b([]byte("data"))
	multiHash := Blake2b([]byte("multi"), []byte("ple"), []byte("data"))

	assert.NotEqual(t, singleHash, multiHash)
	assert.Equal(t, Blake2b([]byte("multipledata")), multiHash)

	h := Blake2bFn(func(w io.Writer) {
		w.Write([]byte("custom writer"))
	})
	assert.Equal(t, Blake2b([]byte("custom writer")), h)
}

func TestKeccak256(t *testing.T) {
	assert.Equal(t,
		MustParseBytes32("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
		Keccak256(),
	)
	assert.Equal(t, Keccak256([]byte("multipledata")), Keccak256([]byte("multi"), []byte("ple"), []byte("data")))
}

func TestDaysToSeconds(t *testing.T) {
	assert.Equal(t, uint64(7_776_000), DaysToSeconds(90))
	assert.Equal(t, uint64(0), DaysToSeconds(0))
}

func TestJSONHexInUnaddressablePositions(t *testing.T) {
	addr := MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	id := BytesToBytes32([]byte("master"))

	data, err := json.Marshal(map[string]any{"caller": addr, "id": id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"caller":"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed","id":"0x00000000000000000000000000000000000000000000000000006d6173746572"}`, string(data))

	type owner struct {
		Owner Address  `json:"owner"`
		Ptr   *Address `json:"ptr"`
	}
	data, err = json.Marshal(owner{Owner: addr})
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed","ptr":null}`, string(data))

	var decoded owner
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded.Owner)
	assert.Nil(t, decoded.Ptr)
}
