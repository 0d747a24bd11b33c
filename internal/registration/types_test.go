package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestView_HasPendingReference(t *testing.T) {
	v := &View{FsaID: "tmp_8245-1234"}
	assert.True(t, v.HasPendingReference())

	v.FsaID = "FSA000123"
	assert.False(t, v.HasPendingReference())
}

func TestView_OperatorContactAddress(t *testing.T) {
	v := &View{Establishment: Establishment{Operator: Operator{
		Email:                      "operator@example.com",
		ContactRepresentativeEmail: "rep@example.com",
	}}}
	assert.Equal(t, "operator@example.com", v.OperatorContactAddress())

	v.Establishment.Operator.Email = ""
	assert.Equal(t, "rep@example.com", v.OperatorContactAddress())
}

func TestCouncilContact_LocalName(t *testing.T) {
	c := &CouncilContact{Name: "Cardiff Council", NameWelsh: "Cyngor Caerdydd"}
	assert.Equal(t, "Cyngor Caerdydd", c.LocalName(true))
	assert.Equal(t, "Cardiff Council", c.LocalName(false))

	noWelsh := &CouncilContact{Name: "Dorset Council"}
	assert.Equal(t, "Dorset Council", noWelsh.LocalName(true))
}

func TestCouncilContactConfig_Groups(t *testing.T) {
	combined := CouncilContactConfig{HygieneAndStandards: &CouncilContact{Name: "Cardiff Council"}}
	groups := combined.Groups()
	assert.Len(t, groups, 1)
	assert.Equal(t, "Cardiff Council", groups[0].Name)

	split := CouncilContactConfig{
		Hygiene:   &CouncilContact{Name: "West Dorset"},
		Standards: &CouncilContact{Name: "Dorset County"},
	}
	groups = split.Groups()
	assert.Len(t, groups, 2)
	assert.Equal(t, "West Dorset", groups[0].Name)
	assert.Equal(t, "Dorset County", groups[1].Name)
}

func TestStatus_Pending(t *testing.T) {
	s := Status{Notifications: []NotificationRecord{
		{Type: TypeLC, Sent: true},
		{Type: TypeFBO, Sent: false},
	}}
	assert.True(t, s.Pending())

	s.Notifications[1].Sent = true
	assert.False(t, s.Pending())

	assert.False(t, Status{}.Pending())
}

func TestDeclaration_FeedbackOptIn(t *testing.T) {
	assert.False(t, Declaration{}.FeedbackOptIn())
	assert.True(t, Declaration{Feedback1: "I agree"}.FeedbackOptIn())
}
