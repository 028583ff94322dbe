package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farxan99/OsSimulator/service/dao"
)

func TestFilterByState(t *testing.T) {
	testCases := []struct {
		description string
		state       string
		parameters  []*dao.Parameter
		expect      bool
	}{
		{description: "no parameters", state: "Ready", expect: true},
		{description: "single match", state: "Ready", parameters: []*dao.Parameter{dao.StateParameter("Ready")}, expect: true},
		{description: "single mismatch", state: "New", parameters: []*dao.Parameter{dao.StateParameter("Ready")}},
		{description: "any of", state: "Suspended", parameters: []*dao.Parameter{dao.StateParameter("Blocked", "Suspended")}, expect: true},
		{description: "other parameter ignored", state: "New", parameters: []*dao.Parameter{dao.OwnerParameter("User")}, expect: true},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, FilterByState(testCase.state, testCase.parameters), testCase.description)
	}
}

func TestFilterByOwner(t *testing.T) {
	parameters := []*dao.Parameter{dao.OwnerParameter("User"), dao.StateParameter("Ready")}
	assert.True(t, FilterByOwner("User", parameters))
	assert.False(t, FilterByOwner("System", parameters))
}
