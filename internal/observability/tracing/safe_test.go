package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsPersonalData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/parking-spot/:id"),
		attribute.String("license_plate_car", "ABC-1234"),
		attribute.String("responsible_name", "Maria Silva"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorKeepsFirstLine(t *testing.T) {
	err := SafeError(errors.New("insert failed\nDETAIL: Key (license_plate_car)=(ABC-1234) already exists."))
	assert.EqualError(t, err, "insert failed")
	assert.Nil(t, SafeError(nil))
}
