package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFezTitle(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateFezTitle("Trivia Night"))
	assert.Error(t, ValidateFezTitle(""))
	assert.Error(t, ValidateFezTitle(strings.Repeat("a", 201)))
	assert.NoError(t, ValidateFezTitle(strings.Repeat("a", 200)))
}

func TestValidateFezInfo(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateFezInfo("Bring your own dice"))
	assert.Error(t, ValidateFezInfo(""))
	assert.Error(t, ValidateFezInfo(strings.Repeat("a", 2001)))
}

func TestValidateFezLocation(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateFezLocation("Deck 5 lounge"))
	assert.Error(t, ValidateFezLocation(""))
	assert.Error(t, ValidateFezLocation(strings.Repeat("a", 501)))
}

func TestValidateFezCapacity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		min     int
		max     int
		wantErr bool
	}{
		{"Valid Pair", 2, 6, false},
		{"Unlimited Max", 2, 0, false},
		{"Zero Both", 0, 0, false},
		{"Negative Min", -1, 5, true},
		{"Negative Max", 1, -5, true},
		{"Min Exceeds Max", 7, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFezCapacity(tt.min, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFezTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"Empty Means TBD", "", false},
		{"Zero Means TBD", "0", false},
		{"Epoch Seconds", "1574364635", false},
		{"RFC3339", "2019-11-21T19:30:35Z", false},
		{"Garbage", "next tuesday-ish", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFezTime(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePostText(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidatePostText("hello"))
	assert.Error(t, ValidatePostText(""))
	assert.Error(t, ValidatePostText(strings.Repeat("a", 2001)))
}

func TestValidateKeyword(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateKeyword("towel"))
	assert.Error(t, ValidateKeyword(""))
	assert.Error(t, ValidateKeyword(strings.Repeat("a", 51)))
}
