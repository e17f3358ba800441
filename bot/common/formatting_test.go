package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatXu(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{5, "5"},
		{999, "999"},
		{1000, "1,000"},
		{25000, "25,000"},
		{1000000, "1,000,000"},
		{600000000, "600,000,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatXu(tt.amount))
	}
}
