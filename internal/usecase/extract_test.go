package usecase

import (
	"testing"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractItemDescriptions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []domain.ItemDescription
	}{
		{
			name: "two items",
			text: "**Blazer** is a wool jacket.\n**Shoes** are leather boots.",
			want: []domain.ItemDescription{
				{Name: "Blazer", Description: "a wool jacket."},
				{Name: "Shoes", Description: "leather boots."},
			},
		},
		{
			name: "description continues past inner period",
			text: "**Dress** is a red dress. It has long sleeves.\n",
			want: []domain.ItemDescription{
				{Name: "Dress", Description: "a red dress. It has long sleeves."},
			},
		},
		{
			name: "description followed by bold term",
			text: "**Scarf** is silk.**Hat** is wool.",
			want: []domain.ItemDescription{
				{Name: "Scarf", Description: "silk."},
				{Name: "Hat", Description: "wool."},
			},
		},
		{
			name: "multiline whitespace before verb",
			text: "Intro.\n\n**Coat**\nis   a long camel coat.  \n\nMore text",
			want: []domain.ItemDescription{
				{Name: "Coat", Description: "a long camel coat."},
			},
		},
		{
			name: "duplicates are kept",
			text: "**Belt** is brown.\n**Belt** is black.",
			want: []domain.ItemDescription{
				{Name: "Belt", Description: "brown."},
				{Name: "Belt", Description: "black."},
			},
		},
		{
			name: "bold without verb is absorbed into the next name",
			text: "**Summary**: casual look.\n**Jeans** are slim fit denim.",
			want: []domain.ItemDescription{
				{Name: "Summary**: casual look.\n**Jeans", Description: "slim fit denim."},
			},
		},
		{
			name: "verb must be a whole word",
			text: "**Bag** island style.",
			want: nil,
		},
		{
			name: "no terminating period",
			text: "**Bag** is a leather tote",
			want: nil,
		},
		{
			name: "unmatched bold after a match is skipped",
			text: "**Tie** is navy.\n**Note:** nothing else",
			want: []domain.ItemDescription{
				{Name: "Tie", Description: "navy."},
			},
		},
		{
			name: "no markup",
			text: "Just a plain analysis without bold text.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractItemDescriptions(tt.text))
		})
	}
}
