package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ichigozero/taskguard/validate"
)

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice1", true},
		{"alice", true},
		{"alic", false},
		{"", false},
		{"string", false},
		{"      ", false},
		{"\t\n  \t", false},
		{"жанна", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validate.Name(tt.in), "Name(%q)", tt.in)
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b.co", true},
		{"a@b.com", true},
		{"@b.co", false},
		{"a@", false},
		{"abcde@", false},
		{"a@b", false},
		{"ab.com", false},
		{"a@@b.co", false},
		{"a@b@c.co", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validate.Email(tt.in), "Email(%q)", tt.in)
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"short", false},
		{"abcdef", true},
		{"secret1", true},
		{"string", false},
		{"       ", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validate.Password(tt.in), "Password(%q)", tt.in)
	}
}

func TestTitleAndDescription(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"buyMilk", true},
		{"getit2", true},
		{"milk", false},
		{"string", false},
		{"     ", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validate.Title(tt.in), "Title(%q)", tt.in)
		assert.Equal(t, tt.want, validate.Description(tt.in), "Description(%q)", tt.in)
	}
}

func TestStatus(t *testing.T) {
	for _, s := range []string{"new", "active", "completed"} {
		assert.True(t, validate.Status(s), s)
	}
	for _, s := range []string{"", "New", "done", "string", "active "} {
		assert.False(t, validate.Status(s), s)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"buyMilk":   "Buymilk",
		"BUYMILK":   "Buymilk",
		"alice1":    "Alice1",
		"A@B.COM":   "A@b.com",
		"":          "",
		"ёлка":      "Ёлка",
		"1password": "1password",
	}
	for in, want := range tests {
		assert.Equal(t, want, validate.Normalize(in), "Normalize(%q)", in)
	}
	assert.Equal(t, validate.Normalize("BuyMilk"), validate.Normalize("buymilk"))
}
