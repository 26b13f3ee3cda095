// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pricingModelPayload struct {
	PricingModel string `validate:"required,pricing_model"`
}

type assetTagPayload struct {
	AssetTag string `validate:"required,asset_tag"`
}

type passwordPayload struct {
	Password string `validate:"required,strong_password"`
}

func TestPricingModelValidation(t *testing.T) {
	for _, model := range []string{"monthly", "yearly", "perpetual"} {
		err := ValidateStruct(&pricingModelPayload{PricingModel: model})
		assert.NoError(t, err, model)
	}

	for _, model := range []string{"weekly", "MONTHLY", "one-time", ""} {
		err := ValidateStruct(&pricingModelPayload{PricingModel: model})
		assert.Error(t, err, model)
	}
}

func TestAssetTagValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(&assetTagPayload{AssetTag: "AD-000042"}))
	assert.Error(t, ValidateStruct(&assetTagPayload{AssetTag: "AD-42"}))
	assert.Error(t, ValidateStruct(&assetTagPayload{AssetTag: "XX-000042"}))
	assert.Error(t, ValidateStruct(&assetTagPayload{AssetTag: "AD-0000421"}))
}

func TestStrongPasswordValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(&passwordPayload{Password: "Str0ng!pass"}))
	assert.Error(t, ValidateStruct(&passwordPayload{Password: "short1!"}))
	assert.Error(t, ValidateStruct(&passwordPayload{Password: "alllowercase1!"}))
	assert.Error(t, ValidateStruct(&passwordPayload{Password: "NoNumbers!!"}))
}

func TestGetValidationErrorsMessages(t *testing.T) {
	err := ValidateStruct(&pricingModelPayload{PricingModel: "weekly"})
	require.Error(t, err)

	errors := GetValidationErrors(err)
	require.Len(t, errors, 1)
	assert.Equal(t, "pricingmodel", errors[0].Field)
	assert.Equal(t, "pricing_model", errors[0].Tag)
	assert.Equal(t, "Pricing model must be one of: monthly, yearly, perpetual", errors[0].Message)
}
