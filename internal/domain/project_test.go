package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromGoal_Short(t *testing.T) {
	assert.Equal(t, "Build login", TitleFromGoal("Build login"))
}

func TestTitleFromGoal_TruncatesTo100(t *testing.T) {
	goal := strings.Repeat("a", 150)
	assert.Len(t, TitleFromGoal(goal), 100)
}

func TestTitleFromGoal_KeepsWhitespace(t *testing.T) {
	goal := "  " + strings.Repeat("a", 97) + " tail that is cut off"
	assert.Equal(t, "  "+strings.Repeat("a", 97)+" ", TitleFromGoal(goal))
}

func TestTitleFromGoal_RuneSafe(t *testing.T) {
	goal := strings.Repeat("é", 120)
	title := TitleFromGoal(goal)
	assert.Equal(t, 100, len([]rune(title)))
}

func TestProject_OwnedBy(t *testing.T) {
	p := &Project{UserID: "u1"}
	assert.True(t, p.OwnedBy("u1"))
	assert.False(t, p.OwnedBy("u2"))
	assert.False(t, p.OwnedBy(""))

	var nilProject *Project
	assert.False(t, nilProject.OwnedBy("u1"))
}

func TestParseTaskType(t *testing.T) {
	tt, ok := ParseTaskType(" User-Story ")
	assert.True(t, ok)
	assert.Equal(t, TaskUserStory, tt)

	_, ok = ParseTaskType("epic")
	assert.False(t, ok)
}

func TestTaskType_GroupName(t *testing.T) {
	assert.Equal(t, "User Stories", TaskUserStory.GroupName())
	assert.Equal(t, "Engineering Tasks", TaskEngineeringTask.GroupName())
	assert.Equal(t, "Risks", TaskRisk.GroupName())
	assert.Equal(t, "Unknowns", TaskUnknown.GroupName())
}

func TestCountTasks_MergesRiskAndUnknown(t *testing.T) {
	tasks := []Task{
		{Type: TaskUserStory}, {Type: TaskUserStory},
		{Type: TaskEngineeringTask},
		{Type: TaskRisk}, {Type: TaskUnknown}, {Type: TaskUnknown},
	}
	assert.Equal(t, TaskStats{TotalTasks: 6, UserStories: 2, EngineeringTasks: 1, Risks: 3}, CountTasks(tasks))
}

func TestCoalesceStr_SkipsBlank(t *testing.T) {
	assert.Equal(t, DefaultTemplateType, CoalesceStr("  ", DefaultTemplateType))
	assert.Equal(t, "Mobile", CoalesceStr("Mobile", DefaultTemplateType))
}
