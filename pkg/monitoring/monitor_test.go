package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQuizAttempt(t *testing.T) {
	before := testutil.ToFloat64(QuizAttempts.WithLabelValues("true"))
	ObserveQuizAttempt(true)
	assert.Equal(t, before+1, testutil.ToFloat64(QuizAttempts.WithLabelValues("true")))
}

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}
