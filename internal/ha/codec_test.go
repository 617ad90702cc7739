package ha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBool(t *testing.T) {
	assert.True(t, decodeBool([]byte("ON")))
	for _, p := range []string{"OFF", "on", "ON ", "", "1", "ONN"} {
		assert.False(t, decodeBool([]byte(p)), "payload %q", p)
	}
}

func TestDecodeUint8(t *testing.T) {
	tests := []struct {
		payload string
		want    uint8
		wantErr bool
	}{
		{"0", 0, false},
		{"255", 255, false},
		{"007", 7, false},
		{"128abc", 128, false},
		{"256", 0, true},
		{"99999", 0, true},
		{"-1", 0, true},
		{"", 0, true},
		{"abc", 0, true},
		{" 5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := decodeUint8([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRGB(t *testing.T) {
	tests := []struct {
		payload string
		want    RGB
		wantErr bool
	}{
		{"12,34,56", RGB{12, 34, 56}, false},
		{"0,0,0", RGB{}, false},
		{"255,255,255", RGB{255, 255, 255}, false},
		{"123", RGB{}, true},
		{"1,2", RGB{}, true},
		{"1,,2", RGB{}, true},
		{"1,2,3,4", RGB{}, true},
		{",2,3", RGB{}, true},
		{"256,0,0", RGB{}, true},
		{"a,b,c", RGB{}, true},
		{"", RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := decodeRGB([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "ON", string(encodeBool(true, nil)))
	assert.Equal(t, "OFF", string(encodeBool(false, nil)))
	assert.Equal(t, "0", string(encodeUint8(0, nil)))
	assert.Equal(t, "42", string(encodeUint8(42, nil)))
	assert.Equal(t, "1,20,255", RGB{1, 20, 255}.String())
}
