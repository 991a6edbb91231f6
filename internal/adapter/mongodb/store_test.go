package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollString(t *testing.T) {
	assert.Equal(t, "arcgis.standardized", CollStandardized.String())
	assert.Equal(t, "climate.training2", CollClimateAligned.String())
	assert.Equal(t, "training.trainingFormat2", CollNarrow.String())
}
