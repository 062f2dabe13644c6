package uploads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDataURL(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		ok      bool
		subtype string
	}{
		{"png", "data:image/png;base64,aGVsbG8=", true, "png"},
		{"jpeg", "data:image/jpeg;base64,aGVsbG8=", true, "jpeg"},
		{"jpg", "data:image/jpg;base64,aGVsbG8=", true, "jpg"},
		{"webp", "data:image/webp;base64,aGVsbG8=", true, "webp"},
		{"plain text", "not-an-image", false, ""},
		{"gif rejected", "data:image/gif;base64,aGVsbG8=", false, ""},
		{"empty body", "data:image/png;base64,", false, ""},
		{"missing scheme", "image/png;base64,aGVsbG8=", false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subtype, b64, ok := parseDataURL(tc.payload)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.subtype, subtype)
				assert.NotEmpty(t, b64)
			}
			assert.Equal(t, tc.ok, validDataURL(tc.payload))
		})
	}
}

func TestFileExt(t *testing.T) {
	assert.Equal(t, "png", fileExt("png"))
	assert.Equal(t, "webp", fileExt("webp"))
	assert.Equal(t, "jpg", fileExt("jpeg"))
	assert.Equal(t, "jpg", fileExt("jpg"))
}
