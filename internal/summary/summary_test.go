package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractive(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantLead   string
		wantPoints []string
	}{
		{
			name: "headings and a numbered list",
			text: "Metro Safety Guidelines\n\nChapter 1: Introduction\nThis document outlines the safety protocols.\n\n" +
				"Key Safety Requirements:\n1. Wear proper safety equipment\n2. Inspections are mandatory\n- Report hazards immediately",
			wantLead:   "Metro Safety Guidelines Chapter 1: Introduction This document outlines the safety protocols.",
			wantPoints: []string{"Wear proper safety equipment", "Inspections are mandatory", "Report hazards immediately"},
		},
		{
			name:       "prose only",
			text:       "One. Two! Three? Four. Five. Six.",
			wantLead:   "One. Two! Three?",
			wantPoints: []string{"One.", "Two!", "Three?", "Four.", "Five."},
		},
		{
			name:       "list only",
			text:       "- a\n- b",
			wantLead:   "a b",
			wantPoints: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extractive{}.Summarize(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLead, got.Summary)
			assert.Equal(t, tt.wantPoints, got.KeyPoints)
		})
	}
}

func TestExtractive_KeyPointLimit(t *testing.T) {
	got, err := Extractive{}.Summarize(context.Background(), "- 1\n- 2\n- 3\n- 4\n- 5\n- 6\n- 7")
	require.NoError(t, err)
	assert.Len(t, got.KeyPoints, 5)
}

func TestExtractive_Empty(t *testing.T) {
	_, err := Extractive{}.Summarize(context.Background(), " \n ")
	assert.ErrorIs(t, err, ErrNoText)
}
