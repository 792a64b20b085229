package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLDecode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1+UNION+SELECT", "1 UNION SELECT"},
		{"%27%20or%201%3D1", "' or 1=1"},
		{"100%", "100%"},
		{"%4", "%4"},
		{"%zz1", "%zz1"},
		{"%41%", "A%"},
		{"a%00b", "a\x00b"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, string(URLDecode([]byte(tt.in))))
		})
	}
}

func TestToPrint(t *testing.T) {
	assert.Equal(t, "a?b?c?", ToPrint([]byte("a\x00b\tc\xff")))
	assert.Equal(t, "' or 1=1", ToPrint([]byte("' or 1=1")))
}

func TestRTrim(t *testing.T) {
	assert.Equal(t, "abc", string(RTrim([]byte("abc \t\r\n"))))
	assert.Equal(t, "  abc", string(RTrim([]byte("  abc"))))
	assert.Empty(t, RTrim([]byte(" \n")))
}
