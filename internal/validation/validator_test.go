package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type equipmentRequest struct {
	Name  string `json:"Equipe_Name" validate:"notblank"`
	Photo string `json:"Equipe_Photo" validate:"dataimage"`
	Role  int    `json:"roleId" validate:"gte=1"`
}

type uploadRequest struct {
	ImageID string `json:"imageId" validate:"blobkey"`
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Fatalf("expected the same validator instance")
	}
}

func TestStructUsesJSONNames(t *testing.T) {
	err := Struct(equipmentRequest{Name: "  ", Photo: "http://x/y.png", Role: 0})
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	require.Len(t, reqErr.Fields, 3)

	assert.Equal(t, "Equipe_Name", reqErr.Fields[0].Field)
	assert.Equal(t, "Equipe_Name is required", reqErr.Fields[0].Message)
	assert.Equal(t, "Equipe_Photo must be a data:image URI", reqErr.Fields[1].Message)
	assert.Equal(t, "roleId must be greater than or equal to 1", reqErr.Fields[2].Message)
}

func TestStructAcceptsValidInput(t *testing.T) {
	err := Struct(equipmentRequest{Name: "Switch", Photo: "data:image/png;base64,AAAA", Role: 2})
	assert.NoError(t, err)
}

func TestBlobKey(t *testing.T) {
	cases := map[string]bool{
		"img-123":        true,
		"1700000000.abc": true,
		"":               false,
		"../etc/passwd":  false,
		"a/b":            false,
		".hidden":        false,
		"a..b":           false,
	}
	for key, want := range cases {
		if got := BlobKey(key); got != want {
			t.Fatalf("BlobKey(%q) = %v, want %v", key, got, want)
		}
	}

	assert.Error(t, Struct(uploadRequest{ImageID: "../x"}))
	assert.NoError(t, Struct(uploadRequest{ImageID: "photo_1"}))
}
