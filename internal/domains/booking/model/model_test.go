package model_test

import (
	"strings"
	"testing"
	"time"

	"stayhub/internal/domains/booking/model"

	"github.com/stretchr/testify/assert"
)

func TestNewConfirmationCode(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	for i := 0; i < 1000; i++ {
		code := model.NewConfirmationCode()

		assert.Len(t, code, model.ConfirmationCodeLength)

		for _, char := range code {
			assert.True(t, strings.ContainsRune(alphabet, char), "unexpected character %q in code %s", char, code)
		}
	}
}

func TestNewConfirmationCode_Varies(t *testing.T) {
	seen := map[string]bool{}

	for i := 0; i < 100; i++ {
		seen[model.NewConfirmationCode()] = true
	}

	assert.Greater(t, len(seen), 1, "expected different codes across draws")
}

func TestCancellationDeadline(t *testing.T) {
	checkIn := time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)

	deadline := model.CancellationDeadline(checkIn)

	assert.Equal(t, time.Date(2026, 9, 9, 15, 0, 0, 0, time.UTC), deadline)
}
