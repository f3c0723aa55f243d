package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRegime(t *testing.T) {
	// buffer 1%: Bull por encima de 101, Bear por debajo de 99
	assert.Equal(t, RegimeBull, ClassifyRegime(102, 100, 0.01))
	assert.Equal(t, RegimeBear, ClassifyRegime(98.5, 100, 0.01))
	assert.Equal(t, RegimeNeutral, ClassifyRegime(100.5, 100, 0.01))
}

func TestClassifyRegime_BandEdges(t *testing.T) {
	// los bordes exactos de la banda muerta son Neutral (desigualdad estricta)
	assert.Equal(t, RegimeNeutral, ClassifyRegime(101, 100, 0.01))
	assert.Equal(t, RegimeNeutral, ClassifyRegime(99, 100, 0.01))
}

func TestClassifyRegime_UndefinedTrend(t *testing.T) {
	assert.Equal(t, RegimeNeutral, ClassifyRegime(100, math.NaN(), 0.01))
}

func TestRegime_String(t *testing.T) {
	assert.Equal(t, "Bull", RegimeBull.String())
	assert.Equal(t, "Bear", RegimeBear.String())
	assert.Equal(t, "Neutral", RegimeNeutral.String())
}
