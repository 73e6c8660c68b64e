package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"cyrillic single word", "Маркетинг", "marketing"},
		{"cyrillic short", "Код", "kod"},
		{"cyrillic two words", "Категория Х", "kategoriya-kh"},
		{"yo and soft sign", "Ёлка и соль", "elka-i-sol"},
		{"latin with spaces", "Sales  Emails", "sales-emails"},
		{"punctuation dropped", "Code & Review!", "code-review"},
		{"repeated hyphens", "a---b", "a-b"},
		{"diacritics folded", "Café Crème", "cafe-creme"},
		{"full-width letters", "Ｍａｒｋｅｔｉｎｇ", "marketing"},
		{"ligature", "ﬁnance", "finance"},
		{"roman numeral", "Café Ⅻ", "cafe-xii"},
		{"short i keeps its breve reading", "Майонез", "mayonez"},
		{"digits kept", "Top 10 Ideas", "top-10-ideas"},
		{"leading and trailing space", "  Email  ", "email"},
		{"empty", "", ""},
		{"only disallowed", "!!! ???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMakeIdempotent(t *testing.T) {
	inputs := []string{
		"Маркетинг", "Код", "Категория Х", "Sales  Emails", "Code & Review!",
		"-leading", "trailing-", "Ünïcödé Ñame", "日本語 text", "", "Ｍａｒｋｅｔｉｎｇ", "ﬁnance Ⅻ",
	}
	for _, in := range inputs {
		once := Make(in)
		assert.Equal(t, once, Make(once), "Make is not idempotent for %q", in)
	}
}

func TestMakeNonASCIINeverEmpty(t *testing.T) {
	for _, in := range []string{"Категория Х", "Обучение", "Продажи и маркетинг", "Ёж", "Ｍａｒｋｅｔｉｎｇ", "ﬁnance", "Ⅻ"} {
		assert.NotEmpty(t, Make(in), "slug for %q", in)
	}
}
