package validatex_test

import (
	"errors"
	"testing"

	"github.com/aussiebroadwan/totpenroll/pkg/validatex"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Account string `json:"account" validate:"required"`
	Label   string `json:"label,omitempty" validate:"required,max=4"`
	Note    string `validate:"max=2"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, validatex.Struct(sample{Account: "a", Label: "ok"}))

	err := validatex.Struct(sample{Label: "too long", Note: "abc"})
	require.Error(t, err)

	var ve validatex.Errors
	require.True(t, errors.As(err, &ve))
	require.Equal(t, validatex.Errors{
		{Field: "account", Tag: "required"},
		{Field: "label", Tag: "max", Param: "4"},
		{Field: "Note", Tag: "max", Param: "2"},
	}, ve)
	require.Equal(t, "account is required; label failed on max=4; Note failed on max=2", err.Error())
}
