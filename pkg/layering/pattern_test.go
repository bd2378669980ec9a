package layering

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		pattern   string
		namespace string
		want      bool
	}{
		{"..service..", "com.example.service", true},
		{"..service..", "a.b.service.c", true},
		{"..service..", "service", true},
		{"..service..", "example.com/shop/service/orders", true},
		{"..service..", "example.com/shop/services", false},
		{"..service..", "example.com/shop/web", false},
		{"com.example.service..", "com.example.service", true},
		{"com.example.service..", "com.example.service.impl", true},
		{"com.example.service..", "org.example.service", false},
		{"com.example.service..", "com.example", false},
		{"..com.koodibril.home.web..", "com.koodibril.home.web.rest", true},
		{"..com.koodibril.home.web..", "com.koodibril.home.service", false},
		{"..web", "example.com/shop/web", true},
		{"..web", "example.com/shop/web/api", false},
		{"example.com/shop/web..", "example.com/shop/web/api", true},
		{"example.com/shop/web", "example.com/shop/web", true},
		{"example.com/shop/web", "example.com/shop/web/api", false},
		{"..*repo*..", "example.com/shop/userrepository", true},
		{"..*repo*..", "example.com/shop/user", false},
		{"..internal.*..", "example.com/internal/service", true},
		{"...service..", "example.com/shop/service", true},
		{"...service..", "example.com/shop/service/orders", true},
		{"...service..", "example.com/shop/web", false},
		{"..web...", "example.com/shop/web/api", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.namespace, func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.namespace))
		})
	}
}

func TestParsePattern_Invalid(t *testing.T) {
	for _, s := range []string{"", "   ", "a...b", "com..example.[", "....", "a.....b"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParsePattern(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPattern))
		})
	}
}

func TestPattern_String(t *testing.T) {
	p := MustParsePattern(" ..web.. ")
	assert.Equal(t, "..web..", p.String())
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{"example", "com", "shop", "web"}, Segments("example.com/shop/web"))
	assert.Equal(t, []string{"com", "example"}, Segments("com.example"))
	assert.Empty(t, Segments(""))
}

func TestHasNamespacePrefix(t *testing.T) {
	assert.True(t, HasNamespacePrefix("example.com/shop", "example.com/shop"))
	assert.True(t, HasNamespacePrefix("example.com/shop/web", "example.com/shop"))
	assert.True(t, HasNamespacePrefix("com.example.web", "com.example"))
	assert.False(t, HasNamespacePrefix("example.com/shopping", "example.com/shop"))
	assert.False(t, HasNamespacePrefix("example.com", "example.com/shop"))
	assert.False(t, HasNamespacePrefix("example.com/shop", ""))
}
