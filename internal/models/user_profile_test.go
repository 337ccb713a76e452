package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAgeBoundaries(t *testing.T) {
	cases := []struct {
		age  int
		want AgeGroup
	}{
		{0, AgeGroupChild},
		{12, AgeGroupChild},
		{13, AgeGroupTeen},
		{17, AgeGroupTeen},
		{18, AgeGroupYoungAdult},
		{29, AgeGroupYoungAdult},
		{30, AgeGroupAdult},
		{59, AgeGroupAdult},
		{60, AgeGroupSenior},
		{104, AgeGroupSenior},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyAge(tc.age), "age %d", tc.age)
	}
}

func TestResolveGoalType(t *testing.T) {
	assert.Equal(t, GoalLose, ResolveGoalType(70, 60))
	assert.Equal(t, GoalGain, ResolveGoalType(50, 60))
	assert.Equal(t, GoalGain, ResolveGoalType(65, 65), "equal weights resolve to gain")
}

func TestNewUserProfileDerivesGroupAndGoal(t *testing.T) {
	profile := NewUserProfile(ProfileInput{
		Name:       "Ana",
		Age:        25,
		HeightCM:   165,
		WeightKG:   70,
		GoalWeight: 60,
		Language:   "pt",
	})

	assert.Equal(t, AgeGroupYoungAdult, profile.AgeGroup)
	assert.Equal(t, GoalLose, profile.GoalType)
	assert.Equal(t, "pt", profile.Language)
	assert.False(t, profile.AgeGroup.IsMinor())
	assert.True(t, AgeGroupTeen.IsMinor())
}
