package intelligence

import (
	"testing"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() BreakdownInput {
	return BreakdownInput{
		FeatureGoal:  "Build login",
		TargetUsers:  "app users",
		Constraints:  "1 week",
		TemplateType: "Web Application",
	}
}

func TestBuildBreakdownPrompt_EmbedsFieldsVerbatim(t *testing.T) {
	in := BreakdownInput{
		FeatureGoal:  "Let teams share  dashboards",
		TargetUsers:  "analysts & managers",
		Constraints:  "no new infra; <2 weeks",
		TemplateType: "Mobile App",
	}

	prompt, err := BuildBreakdownPrompt(in)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Feature Goal: Let teams share  dashboards")
	assert.Contains(t, prompt, "Target Users: analysts & managers")
	assert.Contains(t, prompt, "Constraints: no new infra; <2 weeks")
	assert.Contains(t, prompt, "Template Type: Mobile App")
	assert.Contains(t, prompt, "Start with [ and end with ]")
	assert.Contains(t, prompt, "no markdown, no code blocks")
	assert.Contains(t, prompt, `"estimatedHours": number`)
}

func TestBuildBreakdownPrompt_DefaultsTemplate(t *testing.T) {
	in := validInput()
	in.TemplateType = "  "

	prompt, err := BuildBreakdownPrompt(in)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Template Type: Web Application")
}

func TestBuildBreakdownPrompt_Deterministic(t *testing.T) {
	a, err := BuildBreakdownPrompt(validInput())
	require.NoError(t, err)
	b, err := BuildBreakdownPrompt(validInput())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildBreakdownPrompt_RequiredFields(t *testing.T) {
	cases := map[string]func(*BreakdownInput){
		"empty goal":         func(in *BreakdownInput) { in.FeatureGoal = "" },
		"blank goal":         func(in *BreakdownInput) { in.FeatureGoal = " \t\n" },
		"empty target users": func(in *BreakdownInput) { in.TargetUsers = "" },
		"blank constraints":  func(in *BreakdownInput) { in.Constraints = "   " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := BuildBreakdownPrompt(in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestParseBreakdown_PreservesOrder(t *testing.T) {
	raw := `[
		{"title":"A","description":"first","type":"risk","priority":"low","difficulty":"easy"},
		{"title":"B","description":"second","type":"user-story","priority":"high","difficulty":"hard"},
		{"title":"C","description":"third","type":"engineering-task","priority":"medium","difficulty":"medium","estimatedHours":6}
	]`

	result, err := ParseBreakdown(raw)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.Empty(t, result.Rejected)

	assert.Equal(t, "A", result.Records[0].Title)
	assert.Equal(t, "B", result.Records[1].Title)
	assert.Equal(t, "C", result.Records[2].Title)
	assert.Equal(t, domain.TaskRisk, result.Records[0].Type)
	assert.Nil(t, result.Records[0].EstimatedHours)
	require.NotNil(t, result.Records[2].EstimatedHours)
	assert.Equal(t, 6.0, *result.Records[2].EstimatedHours)
}

func TestParseBreakdown_NormalisesEnums(t *testing.T) {
	result, err := ParseBreakdown(`[{"title":" Login ","type":" User-Story","priority":"HIGH","difficulty":"Medium "}]`)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, "Login", rec.Title)
	assert.Equal(t, "", rec.Description)
	assert.Equal(t, domain.TaskUserStory, rec.Type)
	assert.Equal(t, domain.PriorityHigh, rec.Priority)
	assert.Equal(t, domain.DifficultyMedium, rec.Difficulty)
}

func TestParseBreakdown_QuarantinesInvalidRecords(t *testing.T) {
	raw := `[
		{"title":"ok","description":"d","type":"user-story","priority":"high","difficulty":"easy"},
		{"description":"no title","type":"risk","priority":"low","difficulty":"easy"},
		{"title":"bad type","type":"epic","priority":"low","difficulty":"easy"},
		{"title":"bad priority","type":"risk","priority":"urgent","difficulty":"easy"},
		{"title":"bad difficulty","type":"risk","priority":"low","difficulty":"trivial"},
		{"title":"zero hours","type":"engineering-task","priority":"low","difficulty":"easy","estimatedHours":0},
		{"title":"string hours","type":"engineering-task","priority":"low","difficulty":"easy","estimatedHours":"four"},
		"not an object",
		{"title":"also ok","type":"unknown","priority":"medium","difficulty":"hard","estimatedHours":null}
	]`

	result, err := ParseBreakdown(raw)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "ok", result.Records[0].Title)
	assert.Equal(t, "also ok", result.Records[1].Title)
	assert.Nil(t, result.Records[1].EstimatedHours)

	require.Len(t, result.Rejected, 7)
	indexes := make([]int, 0, len(result.Rejected))
	for _, r := range result.Rejected {
		indexes = append(indexes, r.Index)
		assert.NotEmpty(t, r.Reason)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, indexes)
	assert.Contains(t, result.Rejected[1].Reason, `"epic"`)
}

func TestParseBreakdown_ProseAroundArray(t *testing.T) {
	raw := "Here is the breakdown:\n```json\n" +
		`[{"title":"x","description":"y","type":"risk","priority":"low","difficulty":"easy"}]` +
		"\n```"
	result, err := ParseBreakdown(raw)
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
}

func TestParseBreakdown_Failures(t *testing.T) {
	cases := map[string]string{
		"no array":        `I could not produce a breakdown.`,
		"invalid json":    `[{"title": "x",]`,
		"empty array":     `[]`,
		"all invalid":     `[{"title":"x","type":"epic"}]`,
		"greedy two sets": `[{"title":"a"}] then [{"title":"b"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := ParseBreakdown(raw)
			assert.ErrorIs(t, err, domain.ErrParse)
			assert.Nil(t, result)
		})
	}
}
