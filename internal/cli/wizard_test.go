package cli

import (
	"testing"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateForm_SkipsFilledFields(t *testing.T) {
	req := service.GenerateRequest{
		FeatureGoal:  "Wishlists",
		TargetUsers:  "Shoppers",
		Constraints:  "Two weeks",
		TemplateType: "CLI Tool",
	}
	assert.Nil(t, generateForm(&req))
}

func TestGenerateForm_DefaultsTemplate(t *testing.T) {
	req := service.GenerateRequest{FeatureGoal: "Wishlists"}
	form := generateForm(&req)
	require.NotNil(t, form)
	assert.Equal(t, domain.DefaultTemplateType, req.TemplateType)
	assert.Equal(t, "Wishlists", req.FeatureGoal)
}

func TestRequiredText(t *testing.T) {
	check := requiredText("target users")
	assert.NoError(t, check("shoppers"))
	err := check("   ")
	require.Error(t, err)
	assert.Equal(t, "target users is required", err.Error())
}

func TestFlowHuhTheme(t *testing.T) {
	theme := flowHuhTheme()
	require.NotNil(t, theme)
	assert.True(t, theme.Focused.Title.GetBold())
}

func TestConfirmForm(t *testing.T) {
	var ok bool
	assert.NotNil(t, confirmForm("Delete?", &ok))
}
