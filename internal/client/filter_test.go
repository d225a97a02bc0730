package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/datewrapped/internal/dating"
)

func TestMatchName(t *testing.T) {
	tests := []struct {
		name string
		term string
		want bool
	}{
		{"Jessica", "", true},
		{"Jessica", "ssi", true},
		{"Jessica", "JESS", true},
		{"Jessica", "jsca", true},
		{"Anna", "annna", true},
		{"Anna", "annx", true},
		{"Anna", "xa", false},
		{"Anna", "bob", false},
		{"Zoë", "zoë", true},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.term, func(t *testing.T) {
			require.Equal(t, tt.want, MatchName(tt.name, tt.term))
		})
	}
}

func TestFilterRows(t *testing.T) {
	rows := []Row{
		{Entry: &dating.Entry{PersonName: "Ana"}},
		{Entry: &dating.Entry{PersonName: "Ben"}},
		{Entry: &dating.Entry{PersonName: "Hannah"}},
	}
	require.Equal(t, []int{0, 2}, FilterRows(rows, "an"))
	require.Equal(t, []int{0, 1, 2}, FilterRows(rows, " "))
}
