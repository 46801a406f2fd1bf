package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadIntFromFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")
	err := os.WriteFile(path, []byte("128\n"), 0644)
	assert.NoError(t, err)

	// WHEN
	value, err := ReadIntFromFile(path)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 128, value)
}

func TestReadIntFromFileEmpty(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")
	err := os.WriteFile(path, []byte(""), 0644)
	assert.NoError(t, err)

	// WHEN
	_, err = ReadIntFromFile(path)

	// THEN
	assert.Error(t, err)
}

func TestWriteIntToFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")

	// WHEN
	err := WriteIntToFile(255, path)

	// THEN
	assert.NoError(t, err)
	value, err := ReadIntFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 255, value)
}

func TestIsWritable(t *testing.T) {
	// GIVEN
	writablePath := filepath.Join(t.TempDir(), "pwm1")
	err := os.WriteFile(writablePath, []byte("0"), 0644)
	assert.NoError(t, err)

	readOnlyPath := filepath.Join(t.TempDir(), "pwm2")
	err = os.WriteFile(readOnlyPath, []byte("0"), 0444)
	assert.NoError(t, err)

	// WHEN
	writable := IsWritable(writablePath)
	readOnly := IsWritable(readOnlyPath)

	// THEN
	assert.True(t, writable)
	if os.Getuid() != 0 {
		assert.False(t, readOnly)
	}
}
