package criteria

import (
	"github.com/farxan99/OsSimulator/service/dao"
)

// Match reports whether value satisfies every parameter named name. Parameters
// with other names are ignored.
func Match(name, value string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != name {
			continue
		}
		if !matchValue(value, parameter.Value) {
			return false
		}
	}
	return true
}

// FilterByState matches the state parameter
func FilterByState(state string, parameters []*dao.Parameter) bool {
	return Match(dao.ParameterState, state, parameters)
}

// FilterByOwner matches the owner parameter
func FilterByOwner(owner string, parameters []*dao.Parameter) bool {
	return Match(dao.ParameterOwner, owner, parameters)
}

func matchValue(value string, expected interface{}) bool {
	switch actual := expected.(type) {
	case string:
		return value == actual
	case []string:
		for _, s := range actual {
			if value == s {
				return true
			}
		}
		return false
	}
	return true
}
