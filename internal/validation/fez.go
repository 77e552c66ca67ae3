package validation

import (
	"fmt"
	"strconv"
	"time"
)

const (
	maxFezTitleLen    = 200
	maxFezInfoLen     = 2000
	maxFezLocationLen = 500
)

// ValidateFezTitle checks the fez display title.
func ValidateFezTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxFezTitleLen {
		return fmt.Errorf("title too long (max %d characters)", maxFezTitleLen)
	}
	return nil
}

// ValidateFezInfo checks the free-text description.
func ValidateFezInfo(info string) error {
	if info == "" {
		return fmt.Errorf("info is required")
	}
	if len(info) > maxFezInfoLen {
		return fmt.Errorf("info too long (max %d characters)", maxFezInfoLen)
	}
	return nil
}

// ValidateFezLocation checks the location field.
func ValidateFezLocation(location string) error {
	if location == "" {
		return fmt.Errorf("location is required")
	}
	if len(location) > maxFezLocationLen {
		return fmt.Errorf("location too long (max %d characters)", maxFezLocationLen)
	}
	return nil
}

// ValidateFezCapacity checks the capacity pair. Zero max means unlimited.
func ValidateFezCapacity(minCapacity, maxCapacity int) error {
	if minCapacity < 0 || maxCapacity < 0 {
		return fmt.Errorf("capacity cannot be negative")
	}
	if maxCapacity > 0 && minCapacity > maxCapacity {
		return fmt.Errorf("minimum capacity cannot exceed maximum capacity")
	}
	return nil
}

// ValidateFezTime accepts the three stored time shapes: empty ("to be
// determined"), epoch seconds, or RFC 3339.
func ValidateFezTime(s string) error {
	if s == "" || s == "0" {
		return nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return nil
	}
	return fmt.Errorf("time must be empty, epoch seconds, or RFC 3339")
}

// ValidatePostText checks a discussion post body.
func ValidatePostText(text string) error {
	if text == "" {
		return fmt.Errorf("post text is required")
	}
	if len(text) > maxFezInfoLen {
		return fmt.Errorf("post text too long (max %d characters)", maxFezInfoLen)
	}
	return nil
}

// ValidateKeyword checks an alert/mute keyword.
func ValidateKeyword(word string) error {
	if word == "" {
		return fmt.Errorf("keyword is required")
	}
	if len(word) > 50 {
		return fmt.Errorf("keyword too long (max 50 characters)")
	}
	return nil
}
