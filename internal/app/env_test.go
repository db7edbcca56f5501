package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvDuration(t *testing.T) {
	t.Run("Unset", func(t *testing.T) {
		assert.Equal(t, 15*time.Minute, envDuration("GRACE_WINDOW", 15*time.Minute))
	})

	t.Run("Set", func(t *testing.T) {
		t.Setenv("GRACE_WINDOW", "20m")
		assert.Equal(t, 20*time.Minute, envDuration("GRACE_WINDOW", 15*time.Minute))
	})

	t.Run("Garbage", func(t *testing.T) {
		t.Setenv("GRACE_WINDOW", "soon")
		assert.Equal(t, 15*time.Minute, envDuration("GRACE_WINDOW", 15*time.Minute))
	})
}

func TestEnvFloat(t *testing.T) {
	t.Run("Unset", func(t *testing.T) {
		assert.Equal(t, 50.0, envFloat("MAX_ACCURACY_METERS", 50.0))
	})

	t.Run("Set", func(t *testing.T) {
		t.Setenv("MAX_ACCURACY_METERS", "25")
		assert.Equal(t, 25.0, envFloat("MAX_ACCURACY_METERS", 50.0))
	})

	t.Run("Garbage", func(t *testing.T) {
		t.Setenv("MAX_ACCURACY_METERS", "coarse")
		assert.Equal(t, 50.0, envFloat("MAX_ACCURACY_METERS", 50.0))
	})
}
