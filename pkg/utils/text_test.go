package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldCase(t *testing.T) {
	assert.Equal(t, "a@x.com", FoldCase("  A@X.com "))
	assert.Equal(t, FoldCase("ÁLVARO@x.com"), FoldCase("álvaro@X.COM"))
}

func TestSimplify(t *testing.T) {
	assert.Equal(t, "jose perez", Simplify("José Pérez"))
}

func TestHandle(t *testing.T) {
	assert.Equal(t, "@anamaria", Handle("Ana  María"))
	assert.Equal(t, "@lucia", Handle("Lucía"))
	assert.Equal(t, "@", Handle("   "))
}
